package sampledata_test

import (
	"context"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl"
	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/sampledata"
)

var _ printtmpl.SampleDataProvider = (*sampledata.Faker)(nil)

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func newFaker(opts ...sampledata.Option) *sampledata.Faker {
	return sampledata.New(append([]sampledata.Option{sampledata.WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestEntityTypesMatchWhitelist(t *testing.T) {
	want := append([]string(nil), printtmpl.EntityTypes...)
	sort.Strings(want)
	assert.Equal(t, want, sampledata.EntityTypes())
}

func TestSampleDataShape(t *testing.T) {
	tests := []struct {
		entityType string
		singular   string
		plural     string
		relations  []string
	}{
		{"members", "member", "members", []string{"contacts", "addresses", "licenses", "courses"}},
		{"junior_members", "junior_member", "junior_members", []string{"guardians", "addresses"}},
		{"vehicles", "vehicle", "vehicles", []string{"maintenance"}},
		{"meetings", "meeting", "meetings", []string{"participants", "agenda"}},
		{"events", "event", "events", []string{"participants"}},
		{"member_applications", "application", "applications", []string{"contacts", "addresses"}},
	}

	f := newFaker()
	for _, tt := range tests {
		t.Run(tt.entityType, func(t *testing.T) {
			data, err := f.SampleData(context.Background(), tt.entityType)
			require.NoError(t, err)

			assert.Equal(t, "2024-06-15", data["today"])
			assert.Equal(t, tt.entityType, data["entity_type"])
			require.IsType(t, map[string]interface{}{}, data["association"])
			assert.NotEmpty(t, data["association"].(map[string]interface{})["name"])

			record, ok := data[tt.singular].(map[string]interface{})
			require.True(t, ok, "missing %q record", tt.singular)
			assert.Equal(t, record, data["record"])

			for _, rel := range tt.relations {
				items, ok := record[rel].([]interface{})
				require.True(t, ok, "relation %q is not a list", rel)
				assert.NotEmpty(t, items, "relation %q is empty", rel)
			}

			list, ok := data[tt.plural].([]interface{})
			require.True(t, ok)
			assert.Len(t, list, 3)
			assert.Equal(t, record, list[0])
		})
	}
}

func TestSampleDataDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := newFaker(sampledata.WithSeed(7)).SampleData(ctx, "members")
	require.NoError(t, err)
	b, err := newFaker(sampledata.WithSeed(7)).SampleData(ctx, "members")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	f := newFaker(sampledata.WithSeed(7))
	c, err := f.SampleData(ctx, "members")
	require.NoError(t, err)
	d, err := f.SampleData(ctx, "members")
	require.NoError(t, err)
	assert.Equal(t, c, d, "repeated calls on one Faker must not drift")
}

func TestSampleDataDates(t *testing.T) {
	data, err := newFaker().SampleData(context.Background(), "members")
	require.NoError(t, err)

	member := data["member"].(map[string]interface{})
	birth, ok := member["birth_date"].(string)
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), birth)

	parsed, err := time.Parse("2006-01-02", birth)
	require.NoError(t, err)
	assert.True(t, parsed.Before(fixedNow.AddDate(-18, 0, 0)), "member born %s is not an adult", birth)
}

func TestSampleDataAssociationOverride(t *testing.T) {
	assoc := map[string]interface{}{"name": "Gruppo Volontari"}
	data, err := newFaker(sampledata.WithAssociation(assoc)).SampleData(context.Background(), "vehicles")
	require.NoError(t, err)
	assert.Equal(t, assoc, data["association"])
}

func TestSampleDataErrors(t *testing.T) {
	f := newFaker()

	_, err := f.SampleData(context.Background(), "invoices")
	require.ErrorIs(t, err, sampledata.ErrUnknownEntityType)
	assert.Contains(t, err.Error(), `"invoices"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.SampleData(ctx, "members")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreviewWithSampleData(t *testing.T) {
	engine := printtmpl.NewWithOptions(
		printtmpl.WithConfig(printtmpl.DefaultConfig()),
		printtmpl.WithSampleProvider(newFaker()),
	)

	src := `<?xml version="1.0" encoding="UTF-8"?>
<template version="1.0">
  <metadata><entity_type>vehicles</entity_type></metadata>
  <body>
    <h1>{{association.name}}</h1>
    <p>Targa: <variable name="vehicle.license_plate"/></p>
    <ul>
      <loop source="vehicle.maintenance">
        <li><variable name="date" format="date"/> / <variable name="cost" format="currency"/></li>
      </loop>
    </ul>
  </body>
</template>`

	resp := engine.Preview(context.Background(), printtmpl.PreviewRequest{XMLContent: src, EntityType: "vehicles"})
	require.True(t, resp.Success, "error: %+v", resp.Error)
	assert.Regexp(t, `Targa: [A-Z]{2}\d{3}[A-Z]{2}`, resp.HTML)
	assert.Regexp(t, `<li>\d{2}/\d{2}/\d{4} / [\d.]+,\d{2} €</li>`, resp.HTML)
}
