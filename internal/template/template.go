// Package template expands {{env:NAME}} placeholders inside server launch
// configuration using the loaded secrets store.
//
// Expansion is a two-step policy: substitute every placeholder (missing keys
// become the empty string), then drop arguments that are empty after trimming
// and environment entries whose value is empty. Leaving a secret unset is
// therefore the supported way to turn an optional argument off.
package template

import (
	"regexp"
	"strings"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/secrets"
)

var placeholderPattern = regexp.MustCompile(`\{\{env:([^}]+)\}\}`)

// Value is the small sum type the substitution walk operates on: a string, a
// list of values, or a string-keyed map of values. Anything else passes
// through untouched.
type Value any

// Replace walks v and substitutes every {{env:NAME}} placeholder in every
// string it reaches. The input is never mutated.
func Replace(v Value, store secrets.Store) Value {
	switch t := v.(type) {
	case string:
		return replaceString(t, store)
	case []Value:
		out := make([]Value, len(t))
		for i, item := range t {
			out[i] = Replace(item, store)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = replaceString(item, store)
		}
		return out
	case map[string]Value:
		out := make(map[string]Value, len(t))
		for k, item := range t {
			out[k] = Replace(item, store)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, item := range t {
			out[k] = replaceString(item, store)
		}
		return out
	default:
		return v
	}
}

func replaceString(s string, store secrets.Store) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return store.Get(name)
	})
}

// LaunchSpec is a descriptor's launch configuration after substitution and
// filtering, ready to hand to the session manager.
type LaunchSpec struct {
	Command string
	Args    []string
	Env     map[string]string
}

// Environ returns Env flattened into "KEY=VALUE" form for process launch.
func (l LaunchSpec) Environ() []string {
	env := make([]string, 0, len(l.Env))
	for k, v := range l.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// Expand applies substitute-then-filter to a descriptor's launch fields.
// The descriptor itself is left untouched.
func Expand(desc registry.ServerDescriptor, store secrets.Store) LaunchSpec {
	args := make([]string, 0, len(desc.Args))
	for _, raw := range Replace(desc.Args, store).([]string) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		args = append(args, raw)
	}

	env := make(map[string]string, len(desc.Env))
	for k, v := range Replace(desc.Env, store).(map[string]string) {
		if strings.TrimSpace(v) == "" {
			continue
		}
		env[k] = v
	}

	return LaunchSpec{
		Command: desc.Command,
		Args:    args,
		Env:     env,
	}
}
