package hook

import "github.com/mazrean/formdata"

func (p *Parser) first(key string) (Value, bool) {
	values := p.valueMap[key]
	if len(values) == 0 {
		return Value{}, false
	}

	return values[0], true
}

// Value returns the first value collected for key as a string.
func (p *Parser) Value(key string) (string, formdata.Header, bool) {
	v, ok := p.first(key)
	if !ok {
		return "", formdata.Header{}, false
	}

	content, header := v.Unwrap()

	return content, header, true
}

// ValueRaw returns the first value collected for key.
func (p *Parser) ValueRaw(key string) ([]byte, formdata.Header, bool) {
	v, ok := p.first(key)
	if !ok {
		return nil, formdata.Header{}, false
	}

	content, header := v.UnwrapRaw()

	return content, header, true
}

// Values returns every value collected for key, in form order.
func (p *Parser) Values(key string) ([]Value, bool) {
	values, ok := p.valueMap[key]
	return values, ok
}

// ValueMap returns all collected values by name.
// Parts consumed by a hook are not in it.
func (p *Parser) ValueMap() map[string][]Value {
	return p.valueMap
}
