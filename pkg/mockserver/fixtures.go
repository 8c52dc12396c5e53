package mockserver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/bellfeed/pkg/notifications"
)

// Fixture is one seeded notification. Read and Seen are shorthands for
// setting ReadAt and SeenAt to SentAt.
type Fixture struct {
	ID               string         `yaml:"id"`
	Title            string         `yaml:"title"`
	Content          string         `yaml:"content"`
	ActionURL        string         `yaml:"action_url"`
	Category         string         `yaml:"category"`
	Topic            string         `yaml:"topic"`
	CustomAttributes map[string]any `yaml:"custom_attributes"`
	SentAt           *time.Time     `yaml:"sent_at"`
	Read             bool           `yaml:"read"`
	Seen             bool           `yaml:"seen"`
}

type fixtureFile struct {
	Notifications []Fixture `yaml:"notifications"`
}

// Notification converts f, taking now as the default sent time.
func (f Fixture) Notification(now time.Time) (notifications.Notification, error) {
	if f.Title == "" {
		return notifications.Notification{}, fmt.Errorf("%w: %q has no title", ErrInvalidFixture, f.ID)
	}
	sent := now
	if f.SentAt != nil {
		sent = *f.SentAt
	}
	n := notifications.Notification{
		ID:               f.ID,
		Title:            f.Title,
		Content:          f.Content,
		ActionURL:        f.ActionURL,
		Category:         f.Category,
		Topic:            f.Topic,
		CustomAttributes: f.CustomAttributes,
		SentAt:           &sent,
	}
	if f.Seen || f.Read {
		seen := sent
		n.SeenAt = &seen
	}
	if f.Read {
		read := sent
		n.ReadAt = &read
	}
	return n, nil
}

// LoadFixtures decodes a YAML document with a top level "notifications" list,
// oldest first.
func LoadFixtures(r io.Reader, now time.Time) ([]notifications.Notification, error) {
	var file fixtureFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrLoadingFixtures, err)
	}

	out := make([]notifications.Notification, 0, len(file.Notifications))
	for _, f := range file.Notifications {
		n, err := f.Notification(now)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string, now time.Time) ([]notifications.Notification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrLoadingFixtures, err)
	}
	defer f.Close()
	return LoadFixtures(f, now)
}
