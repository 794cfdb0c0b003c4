package blockchain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// CoerceArgs converts JSON values sent by the UI into the Go values go-ethereum packs for inputs
func CoerceArgs(inputs abi.Arguments, raw []json.RawMessage) ([]any, error) {
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", domain.ErrInvalidPayload, len(inputs), len(raw))
	}
	args := make([]any, len(inputs))
	for i, input := range inputs {
		v, err := decodeJSON(raw[i])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", domain.ErrInvalidPayload, i, err)
		}
		coerced, err := coerce(input.Type, v)
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("%w: argument %s (%s): %v", domain.ErrInvalidPayload, name, input.Type.String(), err)
		}
		args[i] = coerced
	}
	return args, nil
}

func decodeJSON(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return coerceInt(t, v)
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(b))
		}
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
		if n, ok := v.(json.Number); ok {
			return n.String(), nil
		}
	case abi.AddressTy:
		if s, ok := v.(string); ok && common.IsHexAddress(s) {
			return common.HexToAddress(s), nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAddress, v)
	case abi.BytesTy:
		if s, ok := v.(string); ok {
			return hexutil.Decode(s)
		}
	case abi.FixedBytesTy, abi.FunctionTy:
		if s, ok := v.(string); ok {
			b, err := hexutil.Decode(s)
			if err != nil {
				return nil, err
			}
			size := t.Size
			if t.T == abi.FunctionTy {
				size = 24
			}
			if len(b) > size {
				return nil, fmt.Errorf("value has %d bytes, type holds %d", len(b), size)
			}
			arr := reflect.New(t.GetType()).Elem()
			reflect.Copy(arr, reflect.ValueOf(b))
			return arr.Interface(), nil
		}
	case abi.SliceTy, abi.ArrayTy:
		return coerceList(t, v)
	case abi.TupleTy:
		return coerceTuple(t, v)
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

func coerceInt(t abi.Type, v any) (any, error) {
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = strings.TrimSpace(n)
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
	}

	x, err := parseBigInt(text, t.Size)
	if errors.Is(err, errTooLarge) {
		return nil, fmt.Errorf("value overflows %s", t.String())
	}
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", text)
	}
	if t.T == abi.UintTy {
		if x.Sign() < 0 {
			return nil, fmt.Errorf("negative value for %s", t.String())
		}
		if x.BitLen() > t.Size {
			return nil, fmt.Errorf("value overflows %s", t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if x.Cmp(limit) >= 0 || x.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value overflows %s", t.String())
		}
	}

	goType := t.GetType()
	if goType == reflect.TypeOf((*big.Int)(nil)) {
		return x, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(x.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(x.Int64()).Convert(goType).Interface(), nil
}

var (
	errNotInteger = errors.New("not an integer")
	errTooLarge   = errors.New("integer too large")
)

// parseBigInt accepts decimal, 0x-prefixed hex and scientific notation without fraction.
// Exponent forms are only expanded when the result fits in maxBits.
func parseBigInt(text string, maxBits int) (*big.Int, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		if x, ok := new(big.Int).SetString(text[2:], 16); ok {
			return x, nil
		}
		return nil, errNotInteger
	}
	if x, ok := new(big.Int).SetString(text, 10); ok {
		return x, nil
	}
	f, ok := new(big.Float).SetPrec(512).SetString(text)
	if !ok || !f.IsInt() {
		return nil, errNotInteger
	}
	if f.MantExp(nil) > maxBits {
		return nil, errTooLarge
	}
	x, _ := f.Int(nil)
	return x, nil
}

func coerceList(t abi.Type, v any) (any, error) {
	// Inputs typed into a text field arrive as a JSON string holding the array
	if s, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "[") {
		decoded, err := decodeJSON(json.RawMessage(s))
		if err != nil {
			return nil, err
		}
		v = decoded
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
	}

	var list reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		list = reflect.New(t.GetType()).Elem()
	} else {
		list = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		elem, err := coerce(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list.Index(i).Set(reflect.ValueOf(elem))
	}
	return list.Interface(), nil
}

func coerceTuple(t abi.Type, v any) (any, error) {
	if s, ok := v.(string); ok {
		decoded, err := decodeJSON(json.RawMessage(s))
		if err != nil {
			return nil, err
		}
		v = decoded
	}

	tuple := reflect.New(t.GetType()).Elem()
	for i, elemType := range t.TupleElems {
		var field any
		switch val := v.(type) {
		case map[string]any:
			f, ok := val[t.TupleRawNames[i]]
			if !ok {
				return nil, fmt.Errorf("missing field %q", t.TupleRawNames[i])
			}
			field = f
		case []any:
			if len(val) != len(t.TupleElems) {
				return nil, fmt.Errorf("expected %d fields, got %d", len(t.TupleElems), len(val))
			}
			field = val[i]
		default:
			return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
		}

		coerced, err := coerce(*elemType, field)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
		}
		tuple.Field(i).Set(reflect.ValueOf(coerced))
	}
	return tuple.Interface(), nil
}

// Normalize turns unpacked return values into JSON friendly values: integers and
// addresses become strings, byte values hex, tuples objects keyed by field name.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case *big.Int:
		return val.String()
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case []byte:
		return hexutil.Encode(val)
	case string, bool:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		return normalizeList(rv)
	case reflect.Slice:
		return normalizeList(rv)
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			field := rv.Type().Field(i)
			name := field.Tag.Get("json")
			if name == "" {
				name = field.Name
			}
			out[name] = Normalize(rv.Field(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

func normalizeList(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = Normalize(rv.Index(i).Interface())
	}
	return out
}
