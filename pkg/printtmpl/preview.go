package printtmpl

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PreviewRequest asks for a template to be rendered against sample data.
type PreviewRequest struct {
	XMLContent string `json:"xml_content" yaml:"xml_content" validate:"required,template_size"`
	EntityType string `json:"entity_type" yaml:"entity_type" validate:"required,entity_type"`
}

// PreviewResponse is the outcome of a preview. Either Success is true and
// HTML and CSS hold the output, or Error says why the request was rejected.
// RequestID matches the request_id field of the preview's log lines.
type PreviewResponse struct {
	RequestID string        `json:"request_id"`
	Success   bool          `json:"success"`
	HTML      string        `json:"html,omitempty"`
	CSS       string        `json:"css,omitempty"`
	Result    *RenderResult `json:"-"`
	Error     *RequestError `json:"error,omitempty"`
}

// ValidateRequest asks for a template to be validated.
type ValidateRequest struct {
	XMLContent string `json:"xml_content" yaml:"xml_content" validate:"required,template_size"`
}

// ValidateResponse is the outcome of a validate request. Error is set only
// when the request itself was rejected, e.g. for an oversized payload.
type ValidateResponse struct {
	Valid  bool          `json:"valid"`
	Errors []string      `json:"errors"`
	Error  *RequestError `json:"error,omitempty"`
}

// newRequestValidator builds the struct validator for entry point requests.
// template_size enforces the configured size ceiling; entity_type the
// entity whitelist.
func newRequestValidator(config *Config) *validator.Validate {
	maxSize := config.MaxInputSize
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("template_size", func(fl validator.FieldLevel) bool {
		return fl.Field().Len() <= maxSize
	})
	_ = v.RegisterValidation("entity_type", func(fl validator.FieldLevel) bool {
		return IsValidEntityType(fl.Field().String())
	})
	return v
}

// checkRequest validates an entry point request and maps the first failure
// to a typed RequestError.
func (e *Engine) checkRequest(req interface{}) *RequestError {
	err := e.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{Code: CodeInvalidRequest, Message: err.Error(), Cause: err}
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "template_size":
			return &RequestError{
				Code: CodeTooLarge,
				Message: fmt.Sprintf("template is %d bytes, the maximum is %d bytes",
					reflect.ValueOf(fe.Value()).Len(), e.maxInputSize()),
				Cause: err,
			}
		case "entity_type":
			return &RequestError{
				Code:    CodeInvalidEntityType,
				Message: fmt.Sprintf("invalid entity type %q, expected one of: %s", fe.Value(), entityTypeList()),
				Cause:   err,
			}
		case "required":
			details = append(details, fmt.Sprintf("%s is required", fe.Field()))
		default:
			details = append(details, fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag()))
		}
	}

	return &RequestError{
		Code:    CodeInvalidRequest,
		Message: "invalid request: " + strings.Join(details, "; "),
		Details: details,
		Cause:   err,
	}
}

func (e *Engine) maxInputSize() int {
	if e.config.MaxInputSize <= 0 {
		return DefaultMaxInputSize
	}
	return e.config.MaxInputSize
}

func validationFailure(result ValidationResult) *RequestError {
	code := CodeValidationFailed
	if len(result.ParseErrors) > 0 && result.ParseErrors.Kind() == KindTooLarge {
		code = CodeTooLarge
	}
	return &RequestError{
		Code:    code,
		Message: fmt.Sprintf("template is not valid: %d error(s)", len(result.Errors)),
		Details: result.Errors,
		Cause:   result.Err(),
	}
}

// Preview validates the request and the template, loads sample data for the
// entity type and renders the template against it. Failures are reported in
// the response, never as a panic.
func (e *Engine) Preview(ctx context.Context, req PreviewRequest) (resp PreviewResponse) {
	requestID := uuid.NewString()
	logger := e.log().WithFields(Fields{
		"request_id":  requestID,
		"entity_type": req.EntityType,
	})

	defer func() {
		if r := recover(); r != nil {
			err := RecoverError(r)
			logger.Error("preview failed: %v", err)
			resp = PreviewResponse{
				RequestID: requestID,
				Error:     &RequestError{Code: CodeInternal, Message: "internal error", Cause: err},
			}
		}
	}()

	reject := func(rerr *RequestError) PreviewResponse {
		logger.WithField("code", string(rerr.Code)).Warn("preview rejected: %s", rerr.Message)
		return PreviewResponse{RequestID: requestID, Error: rerr}
	}

	if rerr := e.checkRequest(req); rerr != nil {
		return reject(rerr)
	}

	doc, err := e.Parse(req.XMLContent)
	if err != nil {
		return reject(validationFailure(parseFailure(err)))
	}
	if result := e.Validate(doc); !result.Valid {
		return reject(validationFailure(result))
	}

	if e.samples == nil {
		return reject(&RequestError{Code: CodeSampleData, Message: "no sample data provider configured"})
	}
	if err := ctx.Err(); err != nil {
		return reject(&RequestError{Code: CodeSampleData, Message: "preview cancelled", Cause: err})
	}
	data, err := e.samples.SampleData(ctx, req.EntityType)
	if err != nil {
		return reject(&RequestError{
			Code:    CodeSampleData,
			Message: fmt.Sprintf("failed to load sample data for %s: %v", req.EntityType, err),
			Cause:   err,
		})
	}

	result, err := e.Render(doc, data)
	if err != nil {
		return reject(&RequestError{Code: CodeInternal, Message: "render failed", Cause: err})
	}

	logger.Debug("preview rendered %d bytes of HTML", len(result.HTML))
	return PreviewResponse{
		RequestID: requestID,
		Success:   true,
		HTML:      result.HTML,
		CSS:       result.CSS,
		Result:    result,
	}
}

// ValidateRequest checks the request limits and then validates the template.
func (e *Engine) ValidateRequest(req ValidateRequest) ValidateResponse {
	if rerr := e.checkRequest(req); rerr != nil {
		e.log().WithField("code", string(rerr.Code)).Warn("validate rejected: %s", rerr.Message)
		return ValidateResponse{Errors: []string{rerr.Message}, Error: rerr}
	}

	result := e.ValidateXML(req.XMLContent)
	return ValidateResponse{Valid: result.Valid, Errors: result.Errors}
}
