package sampledata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// ErrUnknownEntityType is returned for an entity type with no generator.
var ErrUnknownEntityType = errors.New("unknown entity type")

// DefaultSeed keeps previews stable between calls.
const DefaultSeed uint64 = 1

// listSize is the number of records in the plural list of each entity.
const listSize = 3

const dateLayout = "2006-01-02"

// Faker produces sample data contexts. It is safe for concurrent use; every
// call builds its own generator from the configured seed.
type Faker struct {
	seed        uint64
	now         func() time.Time
	association map[string]interface{}
}

// Option configures a Faker.
type Option func(*Faker)

// WithSeed sets the random seed. Seed 0 asks gofakeit for a random seed, so
// output changes on every call.
func WithSeed(seed uint64) Option {
	return func(f *Faker) {
		f.seed = seed
	}
}

// WithClock sets the reference time used for "today" and relative dates.
func WithClock(now func() time.Time) Option {
	return func(f *Faker) {
		if now != nil {
			f.now = now
		}
	}
}

// WithAssociation replaces the generated association header.
func WithAssociation(association map[string]interface{}) Option {
	return func(f *Faker) {
		f.association = association
	}
}

// New creates a Faker.
func New(opts ...Option) *Faker {
	f := &Faker{
		seed: DefaultSeed,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type entityGenerator struct {
	singular string
	plural   string
	record   func(g *generator) map[string]interface{}
}

var generators = map[string]entityGenerator{
	"members":             {singular: "member", plural: "members", record: (*generator).member},
	"junior_members":      {singular: "junior_member", plural: "junior_members", record: (*generator).juniorMember},
	"vehicles":            {singular: "vehicle", plural: "vehicles", record: (*generator).vehicle},
	"meetings":            {singular: "meeting", plural: "meetings", record: (*generator).meeting},
	"events":              {singular: "event", plural: "events", record: (*generator).event},
	"member_applications": {singular: "application", plural: "applications", record: (*generator).application},
}

// EntityTypes lists the entity types with a generator, sorted.
func EntityTypes() []string {
	out := make([]string, 0, len(generators))
	for name := range generators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SampleData returns the data context for entityType. The singular record is
// also available under "record" so generic templates can address it.
func (f *Faker) SampleData(ctx context.Context, entityType string) (map[string]interface{}, error) {
	gen, ok := generators[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := f.now()
	g := &generator{fake: gofakeit.New(f.seed), now: now}

	record := gen.record(g)
	list := make([]interface{}, 0, listSize)
	list = append(list, record)
	for i := 1; i < listSize; i++ {
		list = append(list, gen.record(g))
	}

	association := f.association
	if association == nil {
		association = g.association()
	}

	return map[string]interface{}{
		"association": association,
		"today":       now.Format(dateLayout),
		"entity_type": entityType,
		gen.singular:  record,
		gen.plural:    list,
		"record":      record,
	}, nil
}
