package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrPolicyNotFound is returned when no policy is registered for a
// (domain, type) pair. There is no default policy: an unregistered pair is a
// configuration defect and callers must treat it as a hard stop.
var ErrPolicyNotFound = errors.New("no approval policy registered")

// Registry is an immutable lookup table of approval policies, loaded once at
// process start. No mutation path exists after construction.
type Registry struct {
	byKey    map[string]*Policy
	byDomain map[string][]*Policy
	all      []*Policy
}

func key(domain, requestType string) string {
	return domain + "/" + requestType
}

// NewRegistry builds a registry from the given policies, validating each one.
func NewRegistry(policies []Policy) (*Registry, error) {
	r := &Registry{
		byKey:    make(map[string]*Policy, len(policies)),
		byDomain: make(map[string][]*Policy),
	}

	for i := range policies {
		p := policies[i]
		if p.Domain == "" || p.Type == "" {
			return nil, fmt.Errorf("policy %d: domain and type are required", i)
		}
		if p.RequiredApprovals < 1 {
			return nil, fmt.Errorf("policy %s/%s: required_approvals must be at least 1", p.Domain, p.Type)
		}
		if len(p.EligibleRoles) == 0 {
			return nil, fmt.Errorf("policy %s/%s: at least one eligible role is required", p.Domain, p.Type)
		}
		if p.AutoApprove != nil && p.AutoApprove.Field == "" {
			return nil, fmt.Errorf("policy %s/%s: auto_approve.field is required", p.Domain, p.Type)
		}

		k := key(p.Domain, p.Type)
		if _, exists := r.byKey[k]; exists {
			return nil, fmt.Errorf("policy %s/%s: duplicate registration", p.Domain, p.Type)
		}

		r.byKey[k] = &p
		r.byDomain[p.Domain] = append(r.byDomain[p.Domain], &p)
		r.all = append(r.all, &p)
	}

	sort.Slice(r.all, func(i, j int) bool {
		if r.all[i].Domain != r.all[j].Domain {
			return r.all[i].Domain < r.all[j].Domain
		}
		return r.all[i].Type < r.all[j].Type
	})

	return r, nil
}

// LoadFile reads a JSON policy file and builds a registry from it.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var doc struct {
		Policies []Policy `json:"policies"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	return NewRegistry(doc.Policies)
}

// Get returns the policy for a (domain, type) pair.
func (r *Registry) Get(domain, requestType string) (*Policy, error) {
	p, ok := r.byKey[key(domain, requestType)]
	if !ok {
		return nil, fmt.Errorf("%w for %s/%s", ErrPolicyNotFound, domain, requestType)
	}
	return p, nil
}

// ByDomain returns all policies registered under a domain.
func (r *Registry) ByDomain(domain string) []*Policy {
	return r.byDomain[domain]
}

// All returns every registered policy, ordered by domain then type.
func (r *Registry) All() []*Policy {
	return r.all
}
