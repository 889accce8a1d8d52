package printtmpl

import (
	"sort"
	"strings"
)

// ValidationResult is the outcome of validating a template. Valid is true
// exactly when Errors is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`

	// ParseErrors is set when the template could not be parsed; no semantic
	// checks ran in that case.
	ParseErrors ParseErrors      `json:"-"`
	Issues      []*SemanticError `json:"-"`
}

// Err returns the problems as an error, or nil when the template is valid.
func (r ValidationResult) Err() error {
	if len(r.ParseErrors) > 0 {
		return r.ParseErrors
	}
	errs := NewMultiError()
	for _, issue := range r.Issues {
		errs.Add(issue)
	}
	return errs.Err()
}

func parseFailure(err error) ValidationResult {
	result := ValidationResult{Errors: []string{}}
	if list, ok := err.(ParseErrors); ok {
		result.ParseErrors = list
	} else {
		result.ParseErrors = ParseErrors{NewParseError(KindMalformedDocument, err.Error(), 0, 0)}
	}
	result.Errors = result.ParseErrors.Messages()
	return result
}

// ValidateDocument applies the semantic rules to a parsed document. All
// checks run and every problem is reported:
//
//  1. the root element is <template> and a <body> section exists
//  2. every variable name is a non-empty path of [A-Za-z0-9_.[]] characters
//  3. every format is registered in registry
//  4. every loop has a source and every condition a test, both well formed
//  5. metadata entity_type, when present, is in the whitelist
//  6. page settings and section structure are sound
//
// Data resolvability is not checked; that depends on the render context.
func ValidateDocument(doc *Document, registry FormatterRegistry) ValidationResult {
	v := &checker{registry: registry}

	if doc.Root != tagTemplate {
		v.add(SemanticInvalidRoot, doc.Root, "root element must be <template>, found <%s>", doc.Root)
	}
	if !doc.HasBody {
		v.add(SemanticMissingBody, doc.Root, "missing <body> section")
	}

	v.checkVariableNames(doc.Body)
	v.checkFormats(doc.Body)
	v.checkDirectives(doc.Body)

	if entityType, ok := doc.Metadata["entity_type"]; ok && !IsValidEntityType(entityType) {
		v.add(SemanticInvalidEntityType, doc.Root+"/"+tagMetadata,
			"invalid entity type %q, expected one of: %s", entityType, entityTypeList())
	}

	v.issues = append(v.issues, doc.issues...)

	result := ValidationResult{
		Valid:  len(v.issues) == 0,
		Errors: make([]string, 0, len(v.issues)),
		Issues: v.issues,
	}
	for _, issue := range v.issues {
		result.Errors = append(result.Errors, issue.Error())
	}
	return result
}

type checker struct {
	registry FormatterRegistry
	issues   []*SemanticError
}

func (v *checker) add(kind SemanticKind, path, format string, args ...interface{}) {
	v.issues = append(v.issues, newSemanticError(kind, path, format, args...))
}

func (v *checker) checkVariableNames(body []Node) {
	Walk(body, func(n Node) bool {
		vn, ok := n.(*VariableNode)
		if !ok {
			return true
		}
		switch {
		case vn.Name == "":
			v.add(SemanticInvalidVariableName, vn.Path, "variable name is empty")
		case strings.IndexFunc(vn.Name, invalidNameRune) >= 0:
			v.add(SemanticInvalidVariableName, vn.Path,
				"variable name %q contains invalid characters, allowed are letters, digits, '_', '.', '[' and ']'", vn.Name)
		default:
			if err := ValidatePath(vn.Name); err != nil {
				v.add(SemanticInvalidVariableName, vn.Path, "variable name is not a valid path: %v", err)
			}
		}
		return true
	})
}

func invalidNameRune(r rune) bool {
	if r < 128 && isNameByte(byte(r)) {
		return false
	}
	return r != '.' && r != '[' && r != ']'
}

func (v *checker) checkFormats(body []Node) {
	Walk(body, func(n Node) bool {
		vn, ok := n.(*VariableNode)
		if !ok || vn.Format == "" {
			return true
		}
		if v.registry == nil || !HasFormatter(v.registry, vn.Format) {
			var known []string
			if v.registry != nil {
				known = v.registry.ListFormatters()
			}
			v.add(SemanticUnknownFormat, vn.Path, "unknown format %q, available formats: %s",
				vn.Format, strings.Join(known, ", "))
		}
		return true
	})
}

func (v *checker) checkDirectives(body []Node) {
	Walk(body, func(n Node) bool {
		switch dn := n.(type) {
		case *LoopNode:
			if dn.Source == "" {
				v.add(SemanticMissingAttribute, dn.Path, "loop is missing the source attribute")
			} else if err := ValidatePath(dn.Source); err != nil {
				v.add(SemanticInvalidVariableName, dn.Path, "loop source is not a valid path: %v", err)
			}
		case *ConditionNode:
			if dn.Test == "" {
				v.add(SemanticMissingAttribute, dn.Path, "condition is missing the test attribute")
			} else if _, err := parseCondition(dn.Test); err != nil {
				v.add(SemanticInvalidVariableName, dn.Path, "condition test %q is invalid: %v", dn.Test, err)
			}
		}
		return true
	})
}

// References returns the data paths the document reads, sorted and without
// duplicates. Loop-relative paths are returned as written.
func (d *Document) References() []string {
	seen := make(map[string]bool)
	Walk(d.Body, func(n Node) bool {
		switch v := n.(type) {
		case *VariableNode:
			if v.Name != "" {
				seen[v.Name] = true
			}
		case *LoopNode:
			if v.Source != "" {
				seen[v.Source] = true
			}
		case *ConditionNode:
			if c, err := parseCondition(v.Test); err == nil {
				seen[c.path] = true
			}
		}
		return true
	})

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
