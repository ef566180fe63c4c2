package value

// expressionResolver is the shape value needs from package expr, kept
// minimal here to avoid value depending on expr's Environment type
// directly — only a resolve func crosses the package boundary.
type expressionResolver func(template string) (string, error)

// Resolve returns a deep copy of v with every EXPRESSION node replaced by
// the STRING produced by resolving its template against resolve, recursing
// into LIST/OBJECT/PROPERTY children. Scalars other than EXPRESSION are
// copied unchanged. The first unresolved expression aborts the whole walk
// (§4.2): Resolve is all-or-nothing, never partial.
func (v *Value) Resolve(resolve func(template string) (string, error)) (*Value, error) {
	return v.resolveWith(expressionResolver(resolve))
}

func (v *Value) resolveWith(resolve expressionResolver) (*Value, error) {
	switch v.tag {
	case Expression:
		s, err := resolve(v.strVal)
		if err != nil {
			return nil, err
		}
		out := New()
		_ = out.SetString(s)
		return out, nil

	case List:
		out := New()
		children := make([]*Value, len(v.listVal))
		for i, c := range v.listVal {
			rc, err := c.resolveWith(resolve)
			if err != nil {
				return nil, err
			}
			children[i] = rc
		}
		if err := out.SetList(children); err != nil {
			return nil, err
		}
		return out, nil

	case Object:
		out := New()
		if err := out.SetEmptyObject(); err != nil {
			return nil, err
		}
		var walkErr error
		v.objVal.each(func(k string, c *Value) {
			if walkErr != nil {
				return
			}
			rc, err := c.resolveWith(resolve)
			if err != nil {
				walkErr = err
				return
			}
			out.objVal.set(k, rc)
		})
		if walkErr != nil {
			return nil, walkErr
		}
		return out, nil

	case Property:
		rc, err := v.propVal.resolveWith(resolve)
		if err != nil {
			return nil, err
		}
		out := New()
		if err := out.SetProperty(v.propKey, rc); err != nil {
			return nil, err
		}
		return out, nil

	default:
		return v.Clone(), nil
	}
}
