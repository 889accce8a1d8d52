package printtmpl

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	data  map[string]interface{}
	err   error
	calls []string
}

func (p *stubProvider) SampleData(_ context.Context, entityType string) (map[string]interface{}, error) {
	p.calls = append(p.calls, entityType)
	return p.data, p.err
}

func newPreviewEngine(p SampleDataProvider) *Engine {
	return NewWithOptions(WithConfig(DefaultConfig()), WithSampleProvider(p))
}

const memberTemplate = header + `<template version="1.0">
  <metadata><entity_type>members</entity_type></metadata>
  <styles>.n { font-weight: bold; }</styles>
  <body><span class="n"><variable name="member.last_name" format="uppercase"/></span></body>
</template>`

func TestPreviewSuccess(t *testing.T) {
	provider := &stubProvider{data: map[string]interface{}{
		"member": map[string]interface{}{"last_name": "Rossi"},
	}}
	engine := newPreviewEngine(provider)

	resp := engine.Preview(context.Background(), PreviewRequest{XMLContent: memberTemplate, EntityType: EntityMembers})

	require.True(t, resp.Success, "error: %+v", resp.Error)
	assert.Nil(t, resp.Error)
	assert.Equal(t, `<span class="n">ROSSI</span>`, resp.HTML)
	assert.Equal(t, ".n { font-weight: bold; }", resp.CSS)
	require.NotNil(t, resp.Result)
	assert.Equal(t, PageA4, resp.Result.Format)
	assert.Equal(t, []string{EntityMembers}, provider.calls)

	_, err := uuid.Parse(resp.RequestID)
	assert.NoError(t, err, "request id %q", resp.RequestID)
}

func TestPreviewRejections(t *testing.T) {
	tests := []struct {
		name     string
		req      PreviewRequest
		provider SampleDataProvider
		wantCode RequestCode
		wantMsg  string
	}{
		{
			name:     "entity type not in whitelist",
			req:      PreviewRequest{XMLContent: memberTemplate, EntityType: "invoices"},
			provider: &stubProvider{},
			wantCode: CodeInvalidEntityType,
			wantMsg:  `invalid entity type "invoices"`,
		},
		{
			name:     "entity type is case sensitive",
			req:      PreviewRequest{XMLContent: memberTemplate, EntityType: "Members"},
			provider: &stubProvider{},
			wantCode: CodeInvalidEntityType,
		},
		{
			name:     "missing entity type",
			req:      PreviewRequest{XMLContent: memberTemplate},
			provider: &stubProvider{},
			wantCode: CodeInvalidRequest,
			wantMsg:  "entity_type is required",
		},
		{
			name:     "missing content",
			req:      PreviewRequest{EntityType: EntityMembers},
			provider: &stubProvider{},
			wantCode: CodeInvalidRequest,
			wantMsg:  "xml_content is required",
		},
		{
			name:     "oversized payload",
			req:      PreviewRequest{XMLContent: wrapBody(strings.Repeat("a", DefaultMaxInputSize)), EntityType: EntityMembers},
			provider: &stubProvider{},
			wantCode: CodeTooLarge,
			wantMsg:  "the maximum is 1048576 bytes",
		},
		{
			name:     "invalid template",
			req:      PreviewRequest{XMLContent: wrapBody(`<variable name="a" format="shout"/>`), EntityType: EntityMembers},
			provider: &stubProvider{},
			wantCode: CodeValidationFailed,
		},
		{
			name:     "malformed template",
			req:      PreviewRequest{XMLContent: header + "<template><body><loop source=\"a\"></body></template>", EntityType: EntityMembers},
			provider: &stubProvider{},
			wantCode: CodeValidationFailed,
			wantMsg:  "template is not valid",
		},
		{
			name:     "sample data failure",
			req:      PreviewRequest{XMLContent: memberTemplate, EntityType: EntityMembers},
			provider: &stubProvider{err: errors.New("database down")},
			wantCode: CodeSampleData,
			wantMsg:  "database down",
		},
		{
			name:     "no provider",
			req:      PreviewRequest{XMLContent: memberTemplate, EntityType: EntityMembers},
			provider: nil,
			wantCode: CodeSampleData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newPreviewEngine(tt.provider).Preview(context.Background(), tt.req)

			assert.False(t, resp.Success)
			assert.Empty(t, resp.HTML)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.RequestID)
			if tt.wantMsg != "" {
				assert.Contains(t, resp.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestPreviewValidationDetails(t *testing.T) {
	src := header + "<template>\n<body>\n<loop source=\"contacts\">\n<variable name=\"value\"/>\n</body>\n</template>"
	resp := newPreviewEngine(&stubProvider{}).Preview(context.Background(),
		PreviewRequest{XMLContent: src, EntityType: EntityMembers})

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidationFailed, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Contains(t, strings.Join(resp.Error.Details, "\n"), "unclosed element <loop>")
	assert.True(t, IsParseError(resp.Error))
}

func TestPreviewCancelledContext(t *testing.T) {
	provider := &stubProvider{data: map[string]interface{}{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := newPreviewEngine(provider).Preview(ctx, PreviewRequest{XMLContent: memberTemplate, EntityType: EntityMembers})

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeSampleData, resp.Error.Code)
	assert.True(t, errors.Is(resp.Error, context.Canceled))
	assert.Empty(t, provider.calls)
}

type panicProvider struct{}

func (panicProvider) SampleData(context.Context, string) (map[string]interface{}, error) {
	panic("provider exploded")
}

func TestPreviewRecoversPanics(t *testing.T) {
	resp := newPreviewEngine(panicProvider{}).Preview(context.Background(),
		PreviewRequest{XMLContent: memberTemplate, EntityType: EntityMembers})

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.False(t, resp.Success)
}

func TestPreviewResponseJSON(t *testing.T) {
	resp := newPreviewEngine(&stubProvider{}).Preview(context.Background(),
		PreviewRequest{XMLContent: memberTemplate, EntityType: "invoices"})

	out, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, false, decoded["success"])
	errObj, ok := decoded["error"].(map[string]interface{})
	require.True(t, ok, "error object missing in %s", out)
	assert.Equal(t, "invalid_entity_type", errObj["code"])
}

func TestValidateRequest(t *testing.T) {
	engine := NewWithConfig(DefaultConfig())

	resp := engine.ValidateRequest(ValidateRequest{XMLContent: memberTemplate})
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
	assert.Nil(t, resp.Error)

	resp = engine.ValidateRequest(ValidateRequest{XMLContent: wrapBody(`<variable name=""/>`)})
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Errors)
	assert.Nil(t, resp.Error)

	resp = engine.ValidateRequest(ValidateRequest{XMLContent: strings.Repeat("x", DefaultMaxInputSize+1)})
	assert.False(t, resp.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTooLarge, resp.Error.Code)

	resp = engine.ValidateRequest(ValidateRequest{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
}

func TestPreviewRespectsConfiguredLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxInputSize = 64
	engine := NewWithOptions(WithConfig(config), WithSampleProvider(&stubProvider{}))

	resp := engine.Preview(context.Background(), PreviewRequest{XMLContent: memberTemplate, EntityType: EntityMembers})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTooLarge, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "the maximum is 64 bytes")
}
