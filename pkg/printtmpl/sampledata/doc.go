// Package sampledata generates representative records for every entity type
// a print template can target, so templates can be previewed without real
// data.
//
// The records mirror what the print module loads for each entity: a single
// record with its nested relations under the singular key, a short list under
// the plural key, the association header and today's date.
//
//	f := sampledata.New(sampledata.WithSeed(42))
//	data, err := f.SampleData(ctx, "members")
//	// data["member"].(map[string]interface{})["contacts"] ...
//
// Output for a given seed and clock is deterministic.
package sampledata
