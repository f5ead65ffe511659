package valuetype

// RangeOf reads numeric min/max bounds from params in any shape the Number
// type accepts. ok is false when no numeric bound is present.
func RangeOf(params any) (r Range, ok bool) {
	bounds, isMap := paramsMap(params)
	if !isMap {
		return Range{}, false
	}
	if raw, present := bounds["min"]; present {
		if lo, isNum := numberOf(raw); isNum {
			r.Min = &lo
		}
	}
	if raw, present := bounds["max"]; present {
		if hi, isNum := numberOf(raw); isNum {
			r.Max = &hi
		}
	}
	return r, r.Min != nil || r.Max != nil
}

// EnumValues returns the allowed values of ENUM params, nil when params are
// not a slice.
func EnumValues(params any) []any {
	return sliceValues(params)
}

// ArrayItemType returns the element type name carried by Array params, either
// a bare type name or an object with a string "type" entry.
func ArrayItemType(params any) (string, bool) {
	if name, ok := params.(string); ok {
		return name, name != ""
	}
	spec, ok := paramsMap(params)
	if !ok {
		return "", false
	}
	name, ok := spec["type"].(string)
	return name, ok && name != ""
}
