package model

// ClassSession is either a weekly slot (Day set) or a one-off session
// (Date set). Date wins when both are present.
type ClassSession struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Time       string `json:"time"`
	Room       string `json:"room"`
	Professor  string `json:"professor"`
	Day        string `json:"day,omitempty"`
	Date       string `json:"date,omitempty"`
	Completed  bool   `json:"completed"`
	FromMoodle bool   `json:"from_moodle"`
}

type Exam struct {
	ID         int64  `json:"id"`
	Subject    string `json:"subject"`
	Time       string `json:"time"`
	Duration   string `json:"duration"`
	Room       string `json:"room"`
	Date       string `json:"date"`
	Completed  bool   `json:"completed"`
	FromMoodle bool   `json:"from_moodle"`
}
