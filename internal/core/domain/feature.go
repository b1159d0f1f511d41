package domain

import (
	"sync"
	"time"

	"go.trai.ch/zerr"
)

// FeatureTestType names the kind of compile-time probe.
type FeatureTestType string

const (
	// FeatureCompilerFlag checks that the compiler accepts a flag.
	FeatureCompilerFlag FeatureTestType = "compiler_flag"
	// FeatureHeader checks that headers can be included.
	FeatureHeader FeatureTestType = "header"
	// FeatureType checks that a type exists.
	FeatureType FeatureTestType = "type"
	// FeatureFunction checks that a function is declared.
	FeatureFunction FeatureTestType = "function"
	// FeatureStructMember checks that a struct has a member.
	FeatureStructMember FeatureTestType = "struct_member"
)

// FeatureTest is a probe request declared by a target.
type FeatureTest struct {
	Type       FeatureTestType
	Variable   string
	Language   Language
	Headers    []string
	Flag       string
	TypeName   string
	Function   string
	StructName string
	Member     string
}

// EffectiveLanguage returns the probe language, defaulting to C.
func (f *FeatureTest) EffectiveLanguage() Language {
	if f.Language == "" {
		return LanguageC
	}
	return f.Language
}

// Validate rejects unknown types and missing required fields.
func (f *FeatureTest) Validate() error {
	if f.Variable == "" {
		return f.invalid("missing variable")
	}
	switch f.EffectiveLanguage() {
	case LanguageC, LanguageCXX:
	default:
		return f.invalid("unknown language " + string(f.Language))
	}

	switch f.Type {
	case FeatureCompilerFlag:
		if f.Flag == "" {
			return f.invalid("compiler_flag requires flag")
		}
	case FeatureHeader:
		if len(f.Headers) == 0 {
			return f.invalid("header requires headers")
		}
	case FeatureType:
		if f.TypeName == "" || len(f.Headers) == 0 {
			return f.invalid("type requires type_name and headers")
		}
	case FeatureFunction:
		if f.Function == "" || len(f.Headers) == 0 {
			return f.invalid("function requires function and headers")
		}
	case FeatureStructMember:
		if f.StructName == "" || f.Member == "" || len(f.Headers) == 0 {
			return f.invalid("struct_member requires struct_name, member and headers")
		}
	default:
		return f.invalid("unknown type " + string(f.Type))
	}
	return nil
}

func (f *FeatureTest) invalid(reason string) error {
	err := zerr.With(ErrInvalidFeatureTest, "reason", reason)
	err = zerr.With(err, "type", string(f.Type))
	return zerr.With(err, "variable", f.Variable)
}

// FeatureTestResult is the outcome of one probe execution.
type FeatureTestResult struct {
	Available bool
	Command   []string
	Log       string
	Duration  time.Duration
}

// FeatureTestTask is a deduplicated probe shared by every requesting target.
type FeatureTestTask struct {
	Fingerprint string
	Test        FeatureTest
	ProbePath   string

	mu         sync.Mutex
	requesters map[InternedString][]string
	order      []InternedString
	result     *FeatureTestResult
}

// NewFeatureTestTask creates a task for test identified by fingerprint.
func NewFeatureTestTask(fingerprint string, test FeatureTest) *FeatureTestTask {
	return &FeatureTestTask{
		Fingerprint: fingerprint,
		Test:        test,
		requesters:  make(map[InternedString][]string),
	}
}

// AddRequester records that target wants the result under variable.
func (t *FeatureTestTask) AddRequester(target InternedString, variable string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	vars, ok := t.requesters[target]
	if !ok {
		t.order = append(t.order, target)
	}
	for _, v := range vars {
		if v == variable {
			return
		}
	}
	t.requesters[target] = append(vars, variable)
}

// HasRequester reports whether target already requested this probe.
func (t *FeatureTestTask) HasRequester(target InternedString) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.requesters[target]
	return ok
}

// Requesters returns the requesting targets in registration order.
func (t *FeatureTestTask) Requesters() []InternedString {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]InternedString(nil), t.order...)
}

// Variables returns the variable names target requested this probe under.
func (t *FeatureTestTask) Variables(target InternedString) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requesters[target]...)
}

// SetResult records the execution outcome. Only the first call has effect.
func (t *FeatureTestTask) SetResult(r FeatureTestResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result != nil {
		return
	}
	t.result = &r
}

// Result returns the outcome and whether the probe has run.
func (t *FeatureTestTask) Result() (FeatureTestResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result == nil {
		return FeatureTestResult{}, false
	}
	return *t.result, true
}
