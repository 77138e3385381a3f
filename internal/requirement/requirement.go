package requirement

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// operators ordered so that two-character operators match first.
var operators = []string{">=", "<=", "==", "!=", "~=", ">", "<"}

// Clause is one operator/version pair of a requirement.
type Clause struct {
	Op      string
	Version string
}

func (c Clause) String() string {
	return c.Op + c.Version
}

// Requirement is a parsed requirement specifier. It is immutable.
type Requirement struct {
	Module  string
	Clauses []Clause

	raw    string
	checks []*mm.Constraints
}

// Parse parses a specifier of the form name[<op><version>[,<op><version>...]].
func Parse(raw string) (*Requirement, error) {
	specifier := strings.TrimSpace(raw)
	if specifier == "" {
		return nil, fmt.Errorf("requirement: empty specifier")
	}

	idx := strings.IndexAny(specifier, "<>=!~")
	if idx == -1 {
		return &Requirement{Module: specifier, raw: specifier}, nil
	}

	module := strings.TrimSpace(specifier[:idx])
	if module == "" {
		return nil, fmt.Errorf("requirement: %q has no module name", raw)
	}

	req := &Requirement{Module: module, raw: specifier}
	for _, part := range strings.Split(specifier[idx:], ",") {
		clause, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("requirement: %q: %w", raw, err)
		}
		check, err := clause.constraint()
		if err != nil {
			return nil, fmt.Errorf("requirement: %q: %w", raw, err)
		}
		req.Clauses = append(req.Clauses, clause)
		req.checks = append(req.checks, check)
	}
	return req, nil
}

// MustParse is like Parse but panics on error. Intended for static kind tables.
func MustParse(raw string) *Requirement {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the specifier as written.
func (r *Requirement) String() string {
	return r.raw
}

// Unconstrained reports whether the requirement names a module only.
func (r *Requirement) Unconstrained() bool {
	return len(r.Clauses) == 0
}

// Satisfies reports whether installed meets every clause.
// An unconstrained requirement is satisfied without looking at installed.
func (r *Requirement) Satisfies(installed string) (bool, error) {
	if r.Unconstrained() {
		return true, nil
	}

	v, err := coreVersion(installed)
	if err != nil {
		return false, fmt.Errorf("requirement: installed version: %w", err)
	}
	for _, check := range r.checks {
		if !check.Check(v) {
			return false, nil
		}
	}
	return true, nil
}

func parseClause(part string) (Clause, error) {
	for _, op := range operators {
		if strings.HasPrefix(part, op) {
			version := strings.TrimSpace(part[len(op):])
			if version == "" {
				return Clause{}, fmt.Errorf("operator %s has no version", op)
			}
			return Clause{Op: op, Version: version}, nil
		}
	}
	return Clause{}, fmt.Errorf("clause %q has no recognised operator", part)
}

// constraint translates the clause into a Masterminds constraint over
// fully specified core versions.
func (c Clause) constraint() (*mm.Constraints, error) {
	v, err := coreVersion(c.Version)
	if err != nil {
		return nil, err
	}

	var expr string
	switch c.Op {
	case "==":
		expr = "= " + v.String()
	case "~=":
		upper, err := compatibleUpperBound(c.Version)
		if err != nil {
			return nil, err
		}
		expr = fmt.Sprintf(">= %s, < %s", v, upper)
	default:
		expr = c.Op + " " + v.String()
	}

	cons, err := mm.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("clause %s: %w", c, err)
	}
	return cons, nil
}

// compatibleUpperBound implements ~=: ~=1.4 allows <2.0.0, ~=1.4.2 allows <1.5.0.
func compatibleUpperBound(raw string) (*mm.Version, error) {
	v, err := coreVersion(raw)
	if err != nil {
		return nil, err
	}
	parts := strings.Count(strings.TrimPrefix(strings.TrimSpace(raw), "v"), ".") + 1
	switch {
	case parts < 2:
		return nil, fmt.Errorf("~= needs at least major.minor, got %q", raw)
	case parts == 2:
		return mm.New(v.Major()+1, 0, 0, "", ""), nil
	default:
		return mm.New(v.Major(), v.Minor()+1, 0, "", ""), nil
	}
}

// coreVersion parses raw and drops pre-release and build metadata so that
// comparison is purely numeric.
func coreVersion(raw string) (*mm.Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", raw, err)
	}
	return mm.New(v.Major(), v.Minor(), v.Patch(), "", ""), nil
}
