package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/planner/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

const (
	defaultSubscriber = "mailto:noreply@planner.local"
	defaultTTL        = 24 * time.Hour
	// an alert about something due within hours is stale soon after
	alertTTL = 2 * time.Hour
)

// Payload is the JSON sent to the push service. TTL is how long the push
// service may hold it for an offline device; zero means a day.
type Payload struct {
	Title string        `json:"title"`
	Body  string        `json:"body"`
	URL   string        `json:"url,omitempty"`
	Tag   string        `json:"tag,omitempty"`
	TTL   time.Duration `json:"-"`
}

// AlertPayload renders an in-app notification as a platform alert.
func AlertPayload(n model.Notification) Payload {
	body := n.Time
	if n.Course != "" {
		body = n.Course + " - " + n.Time
	}
	tag := n.CorrelationKey()
	if tag == "" {
		tag = n.ID
	}
	return Payload{
		Title: "Planner - " + n.Title,
		Body:  body,
		URL:   "/notifications",
		Tag:   tag,
		TTL:   alertTTL,
	}
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string `yaml:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key"`
	Subscriber      string `yaml:"subscriber"`
}

// Enabled reports whether both VAPID keys are present.
func (c Config) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Service handles sending web push notifications.
type Service struct {
	publicKey  string
	privateKey string
	subscriber string
}

// NewService creates a new push service with VAPID keys.
func NewService(cfg Config) *Service {
	subscriber := cfg.Subscriber
	if subscriber == "" {
		subscriber = defaultSubscriber
	}
	return &Service{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: subscriber,
	}
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send sends a push notification to a subscription.
func (s *Service) Send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, s.options(payload))
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

func (s *Service) options(p Payload) *webpush.Options {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             int(ttl / time.Second),
		Urgency:         webpush.UrgencyHigh,
	}
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.Bytes())

	return publicKey, privateKey, nil
}
