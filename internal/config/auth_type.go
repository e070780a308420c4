package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/objgate/pkg/auth"
)

// AuthType is the auth-type setting. Accepted forms:
//
//	auth-type: none
//	auth-type: {bearer: "auth:token:"}
//	auth-type: {basic: [X-Api-Key, secret]}
//	auth-type: !bearer "auth:token:"
//	auth-type: !basic [X-Api-Key, secret]
type AuthType struct {
	policy auth.Policy
	set    bool
}

// NewAuthType wraps a policy. A nil policy means Disabled.
func NewAuthType(p auth.Policy) AuthType {
	if p == nil {
		p = auth.Disabled{}
	}
	return AuthType{policy: p, set: true}
}

// Policy returns the configured policy, Disabled when the key was absent.
func (a AuthType) Policy() auth.Policy {
	if a.policy == nil {
		return auth.Disabled{}
	}
	return a.policy
}

// IsSet reports whether the file carried an auth-type key.
func (a AuthType) IsSet() bool {
	return a.set
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AuthType) UnmarshalYAML(n *yaml.Node) error {
	var (
		p   auth.Policy
		err error
	)
	switch n.Kind {
	case yaml.ScalarNode:
		p, err = decodeTagged(n)
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("%w: expected exactly one scheme, line %d", ErrInvalidAuth, n.Line)
		}
		p, err = decodeScheme(n.Content[0].Value, n.Content[1])
	case yaml.SequenceNode:
		p, err = decodeTagged(n)
	default:
		return fmt.Errorf("%w: unsupported node at line %d", ErrInvalidAuth, n.Line)
	}
	if err != nil {
		return err
	}
	a.policy = p
	a.set = true
	return nil
}

// decodeTagged handles plain scalars and the !bearer / !basic tag forms.
func decodeTagged(n *yaml.Node) (auth.Policy, error) {
	if tag := strings.TrimPrefix(n.Tag, "!"); tag != "" && !strings.HasPrefix(n.Tag, "!!") {
		return decodeScheme(tag, n)
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: untagged sequence at line %d", ErrInvalidAuth, n.Line)
	}
	switch strings.ToLower(strings.TrimSpace(n.Value)) {
	case "", "none", "disabled", "null", "~":
		return auth.Disabled{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q at line %d", ErrInvalidAuth, n.Value, n.Line)
	}
}

func decodeScheme(scheme string, v *yaml.Node) (auth.Policy, error) {
	switch strings.ToLower(scheme) {
	case "bearer":
		var prefix string
		if err := v.Decode(&prefix); err != nil || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: bearer expects a session key prefix, line %d", ErrInvalidAuth, v.Line)
		}
		return auth.Bearer{SessionKeyPrefix: prefix}, nil
	case "basic":
		var pair []string
		if err := v.Decode(&pair); err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("%w: basic expects [header, value], line %d", ErrInvalidAuth, v.Line)
		}
		if strings.TrimSpace(pair[0]) == "" {
			return nil, fmt.Errorf("%w: basic header name is empty, line %d", ErrInvalidAuth, v.Line)
		}
		return auth.Basic{Header: pair[0], Value: pair[1]}, nil
	case "none", "disabled":
		return auth.Disabled{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q at line %d", ErrInvalidAuth, scheme, v.Line)
	}
}
