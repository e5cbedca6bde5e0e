// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package canon

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"

	"grimm.is/voxdoc/internal/ordered"
)

// FromCty converts a cty.Value decoded from HCL into the plain Go shapes
// Render understands. Null and unknown values become nil; whole numbers
// become int64 so they render without a fractional part.
func FromCty(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := FromCty(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := ordered.New()
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := FromCty(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out.Set(key.AsString(), native)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
