package canonical

import "gopkg.in/yaml.v3"

// UnmarshalYAML parses a YAML scalar ("2.0000", 0.01) as a decimal price.
// Without this, yaml.v3 would decode into the underlying int64 and silently
// drop the 1e-4 scale.
func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML renders the fixed four-decimal form.
func (p Price) MarshalYAML() (any, error) {
	return p.String(), nil
}
