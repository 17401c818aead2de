// Package events carries dentist change notifications between the service,
// the caches that depend on it and other server instances.
package events

import (
	"context"
	"errors"
	"time"

	"dental-clinic/internal/models"
)

type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// SubjectPrefix is the NATS subject root; events go to SubjectPrefix + "." + kind.
const SubjectPrefix = "dental.dentists"

type Event struct {
	Kind      Kind            `json:"kind"`
	DentistID int64           `json:"dentistId"`
	Dentist   *models.Dentist `json:"dentist,omitempty"`
	Source    string          `json:"source"`
	At        time.Time       `json:"at"`
}

func (e Event) Subject() string {
	return SubjectPrefix + "." + string(e.Kind)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
