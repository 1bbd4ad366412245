// Package novaload is the top-level facade for the composite value codec.
package novaload

import (
	"github.com/tuannm99/novaload/internal/composite"
	"github.com/tuannm99/novaload/internal/record"
)

type (
	Codec           = composite.Codec
	Option          = composite.Option
	DelimiterConfig = composite.DelimiterConfig
	Record          = record.Record
	Schema          = record.Schema
	Column          = record.Column
	TypeTag         = record.TypeTag
)

var (
	WithDispatch = composite.WithDispatch
	WithPolicy   = composite.WithPolicy
	WithLogger   = composite.WithLogger

	NewSchema     = record.NewSchema
	NewRecord     = record.New
	ParseTypeTag  = record.ParseTypeTag
	IsRecoverable = composite.IsRecoverable
)

// NewCodec builds a codec for a schema of scalar fields using the
// built-in field codecs.
func NewCodec(schema Schema, delims DelimiterConfig, opts ...Option) (*Codec, error) {
	reg := composite.NewRegistry(delims, nil, opts...)
	if err := reg.Define(schema); err != nil {
		return nil, err
	}
	return reg.Codec(schema.Name)
}
