package product

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MsgMissingFields   = "Please provide values for name, description, and price."
	MsgInvalidPrice    = "Please provide a valid price."
	MsgDescriptionLong = "Description is too long."

	MaxDescriptionLen = 1000
)

// Input holds raw decoded JSON values. Price may arrive as a number or a string.
type Input struct {
	Name        any
	Description any
	Price       any
}

// Fields is Input after every rule has passed.
type Fields struct {
	Name        string
	Description string
	Price       float64
}

// RuleFailure names the first rule an Input broke.
type RuleFailure struct {
	Rule    string
	Message string
}

func (f *RuleFailure) Error() string { return f.Message }

type rule struct {
	name  string
	msg   string
	check func(v *validator.Validate, in Input, out *Fields) bool
}

// Validator evaluates the product rules in order and stops at the first failure.
type Validator struct {
	v     *validator.Validate
	rules []rule
}

func NewValidator() *Validator {
	return &Validator{
		v: validator.New(),
		rules: []rule{
			{name: "required", msg: MsgMissingFields, check: checkRequired},
			{name: "price", msg: MsgInvalidPrice, check: checkPrice},
			{name: "description", msg: MsgDescriptionLong, check: checkDescription},
		},
	}
}

func (val *Validator) Check(in Input) (Fields, *RuleFailure) {
	var out Fields
	for _, r := range val.rules {
		if !r.check(val.v, in, &out) {
			return Fields{}, &RuleFailure{Rule: r.name, Message: r.msg}
		}
	}
	return out, nil
}

func checkRequired(v *validator.Validate, in Input, out *Fields) bool {
	name, ok := in.Name.(string)
	if !ok || v.Var(name, "required") != nil {
		return false
	}
	desc, ok := in.Description.(string)
	if !ok || v.Var(desc, "required") != nil {
		return false
	}
	if !truthy(in.Price) {
		return false
	}

	out.Name = name
	out.Description = desc
	return true
}

func checkPrice(v *validator.Validate, in Input, out *Fields) bool {
	p, ok := parsePrice(in.Price)
	if !ok || math.IsInf(p, 0) || v.Var(p, "gt=0") != nil {
		return false
	}
	out.Price = p
	return true
}

func checkDescription(v *validator.Validate, _ Input, out *Fields) bool {
	return v.Var(out.Description, "max="+strconv.Itoa(MaxDescriptionLen)) == nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parsePrice reads the longest numeric prefix of a string price, so "12.5 EUR" is 12.5.
func parsePrice(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case string:
		return parseLeadingFloat(x)
	default:
		return 0, false
	}
}

func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}

	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
