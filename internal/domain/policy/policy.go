package policy

import (
	"encoding/json"
	"strconv"
)

// AutoApproveRule bypasses the voting workflow when the value extracted from
// the request payload falls below the threshold. Whether the comparison is
// strictly-below or at-or-below is declared per policy via Inclusive.
type AutoApproveRule struct {
	// Field names the numeric payload field the threshold is compared against
	Field string `json:"field"`

	Threshold float64 `json:"threshold"`

	// Inclusive selects at-or-below comparison instead of strictly-below
	Inclusive bool `json:"inclusive,omitempty"`
}

// Applies returns true if the given value is under the threshold.
func (r *AutoApproveRule) Applies(value float64) bool {
	if r.Inclusive {
		return value <= r.Threshold
	}
	return value < r.Threshold
}

// ExtractValue reads the rule's field from a request payload. It accepts the
// numeric shapes JSON decoding can produce plus numeric strings. The second
// return value is false when the field is absent or not numeric; callers must
// then fall through to the normal voting workflow.
func (r *AutoApproveRule) ExtractValue(data map[string]interface{}) (float64, bool) {
	raw, ok := data[r.Field]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Policy is the static approval rule for one (domain, type) pair.
type Policy struct {
	Domain            string           `json:"domain"`
	Type              string           `json:"type"`
	RequiredApprovals int              `json:"required_approvals"`
	EligibleRoles     []string         `json:"eligible_roles"`
	AllowSelfApproval bool             `json:"allow_self_approval,omitempty"`
	AutoApprove       *AutoApproveRule `json:"auto_approve,omitempty"`
}

// RoleEligible returns true if the given role may vote under this policy.
func (p *Policy) RoleEligible(role string) bool {
	for _, r := range p.EligibleRoles {
		if r == role {
			return true
		}
	}
	return false
}
