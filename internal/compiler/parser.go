package compiler

import (
	"fmt"
	"reflect"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser converts raw procedure and action documents into domain values.
// Documents may be JSON or YAML; YAML decoding accepts both.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseProcedure decodes a procedure document.
// Both {"steps": [...]} and a bare list of steps are accepted.
func (p *Parser) ParseProcedure(data []byte) (domain.Procedure, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Procedure{}, &domain.ConfigurationError{Field: "procedure", Reason: err.Error()}
	}
	if list, ok := raw.([]any); ok {
		raw = map[string]any{"steps": list}
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return domain.Procedure{}, &domain.ConfigurationError{Field: "procedure", Reason: fmt.Sprintf("expected a mapping or list, got %T", raw)}
	}

	var proc domain.Procedure
	if err := Decode(doc, &proc); err != nil {
		return domain.Procedure{}, &domain.ConfigurationError{Field: "procedure", Reason: err.Error()}
	}
	return proc, nil
}

// ParseActionSets decodes an actions document into descriptors grouped by action set.
//
// Two layouts are accepted:
//
//	action_sets:
//	  orders: [{name: fetch_orders, ...}]
//
//	actions:
//	  - {action_set_id: orders, name: fetch_orders, ...}
func (p *Parser) ParseActionSets(data []byte) (map[string][]domain.ActionDescriptor, error) {
	var doc struct {
		ActionSets map[string][]map[string]any `yaml:"action_sets"`
		Actions    []map[string]any            `yaml:"actions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.ConfigurationError{Field: "actions", Reason: err.Error()}
	}

	sets := make(map[string][]domain.ActionDescriptor)
	for setID, items := range doc.ActionSets {
		for i, item := range items {
			d, err := DecodeDescriptor(item)
			if err != nil {
				return nil, fmt.Errorf("action_sets.%s[%d]: %w", setID, i, err)
			}
			sets[setID] = append(sets[setID], d)
		}
	}
	for i, item := range doc.Actions {
		setID, _ := item["action_set_id"].(string)
		d, err := DecodeDescriptor(item)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		sets[setID] = append(sets[setID], d)
	}
	return sets, nil
}

// DecodeDescriptor decodes one generic document into a validated ActionDescriptor.
func DecodeDescriptor(raw map[string]any) (domain.ActionDescriptor, error) {
	var d domain.ActionDescriptor
	if err := Decode(raw, &d); err != nil {
		return d, &domain.ConfigurationError{Field: "action", Reason: err.Error()}
	}
	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// Decode maps a generic document onto out using mapstructure tags.
// Headers may be written either as a list of {key, value} or as a mapping.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       headerMapHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var headerSliceType = reflect.TypeOf([]domain.Header{})

func headerMapHook(from, to reflect.Type, data any) (any, error) {
	if to != headerSliceType || from.Kind() != reflect.Map {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	headers := make([]domain.Header, 0, len(m))
	for k, v := range m {
		headers = append(headers, domain.Header{Key: k, Value: fmt.Sprint(v)})
	}
	return headers, nil
}
