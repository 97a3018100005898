package types

import (
	"encoding/json"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

type Data map[string]any

func (d *Data) Get(key string) (any, bool) {
	v, exists := (*d)[key]
	return v, exists
}

func (d *Data) GetString(key string) (string, bool) {
	v, exists := d.Get(key)
	return cast.ToString(v), exists
}

func (d *Data) GetInt(key string) (int, bool) {
	v, exists := d.Get(key)
	return cast.ToInt(v), exists
}

func (d *Data) GetBool(key string) (bool, bool) {
	v, exists := d.Get(key)
	return cast.ToBool(v), exists
}

func (d *Data) GetFloat64(key string) (float64, bool) {
	v, exists := d.Get(key)
	return cast.ToFloat64(v), exists
}

func (d *Data) GetDuration(key string) (time.Duration, bool) {
	v, exists := d.Get(key)
	return cast.ToDuration(v), exists
}

func (d *Data) GetStruct(key string, s any) error {
	v, exists := d.Get(key)
	if !exists {
		return errors.NotFound
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Trace(err)
	}
	return json.Unmarshal(b, s)
}

func (d *Data) Set(key string, value any) {
	(*d)[key] = value
}

// Clone is shallow on values; keys are copied so the clone can be
// mutated without touching the original.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	clone := make(Data, len(d))
	for k, v := range d {
		clone[k] = v
	}
	return clone
}
