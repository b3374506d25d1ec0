// Package testutil provides shared fixtures for embodiment tests.
package testutil

import (
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/value"
)

// Case is one template of the equivalence corpus with the result every
// strategy must produce under lenient mode.
type Case struct {
	Name     string
	Template value.Value
	Want     value.Value
}

// Params is the parameter store shared by every corpus case.
func Params() params.Map {
	return params.Map{
		"host":    value.String("db.internal"),
		"port":    value.Int(5432),
		"ratio":   value.Float(0.75),
		"debug":   value.Bool(true),
		"nothing": value.Null{},
		"env":     value.String("prod"),
		"region":  value.String("eu"),
		"tags":    value.NewSeq(value.String("a"), value.String("b")),
		"limits":  value.NewMap(value.E("cpu", value.Int(2)), value.E("mem", value.String("1Gi"))),
	}
}

// Corpus returns templates without cycles or key collisions. Each call
// builds fresh values, so tests may mutate what they receive.
func Corpus() []Case {
	shared := value.NewMap(value.E("addr", value.String("${host}:${port}")))
	sharedWant := func() value.Value {
		return value.NewMap(value.E("addr", value.String("db.internal:5432")))
	}

	return []Case{
		{
			Name:     "scalar exact",
			Template: value.String("${port}"),
			Want:     value.Int(5432),
		},
		{
			Name:     "scalar partial",
			Template: value.String("port ${port}"),
			Want:     value.String("port 5432"),
		},
		{
			Name:     "non-string scalar root",
			Template: value.Float(1.5),
			Want:     value.Float(1.5),
		},
		{
			Name: "type preservation",
			Template: value.NewMap(
				value.E("host", value.String("${host}")),
				value.E("port", value.String("${port}")),
				value.E("ratio", value.String("${ratio}")),
				value.E("debug", value.String("${debug}")),
				value.E("nothing", value.String("${nothing}")),
				value.E("tags", value.String("${tags}")),
				value.E("limits", value.String("${limits}")),
			),
			Want: value.NewMap(
				value.E("host", value.String("db.internal")),
				value.E("port", value.Int(5432)),
				value.E("ratio", value.Float(0.75)),
				value.E("debug", value.Bool(true)),
				value.E("nothing", value.Null{}),
				value.E("tags", value.NewSeq(value.String("a"), value.String("b"))),
				value.E("limits", value.NewMap(value.E("cpu", value.Int(2)), value.E("mem", value.String("1Gi")))),
			),
		},
		{
			Name: "partial coercion",
			Template: value.NewSeq(
				value.String("${port}/tcp"),
				value.String("debug=${debug}"),
				value.String("${ratio}${nothing}"),
				value.String("[${tags}]"),
			),
			Want: value.NewSeq(
				value.String("5432/tcp"),
				value.String("debug=true"),
				value.String("0.75null"),
				value.String(`[["a","b"]]`),
			),
		},
		{
			Name: "nested config",
			Template: value.NewMap(
				value.E("service", value.NewMap(
					value.E("name", value.String("api-${env}")),
					value.E("replicas", value.Int(3)),
					value.E("ports", value.NewSeq(value.String("${port}"), value.Int(443))),
				)),
				value.E("enabled", value.Bool(false)),
			),
			Want: value.NewMap(
				value.E("service", value.NewMap(
					value.E("name", value.String("api-prod")),
					value.E("replicas", value.Int(3)),
					value.E("ports", value.NewSeq(value.Int(5432), value.Int(443))),
				)),
				value.E("enabled", value.Bool(false)),
			),
		},
		{
			Name:     "diamond",
			Template: value.NewMap(value.E("primary", shared), value.E("replica", shared), value.E("all", value.NewSeq(shared))),
			Want:     value.NewMap(value.E("primary", sharedWant()), value.E("replica", sharedWant()), value.E("all", value.NewSeq(sharedWant()))),
		},
		{
			Name: "dynamic keys",
			Template: value.NewMap(
				value.E("${env}", value.NewMap(value.E("${region}-host", value.String("${host}")))),
				value.E("static", value.String("x")),
			),
			Want: value.NewMap(
				value.E("prod", value.NewMap(value.E("eu-host", value.String("db.internal")))),
				value.E("static", value.String("x")),
			),
		},
		{
			Name:     "non-string key coercion",
			Template: value.NewMap(value.E("${port}", value.String("pg")), value.E("${debug}", value.Int(1))),
			Want:     value.NewMap(value.E("5432", value.String("pg")), value.E("true", value.Int(1))),
		},
		{
			Name: "empty containers",
			Template: value.NewMap(
				value.E("m", value.NewMap()),
				value.E("s", value.NewSeq()),
				value.E("nested", value.NewSeq(value.NewMap(), value.NewSeq())),
			),
			Want: value.NewMap(
				value.E("m", value.NewMap()),
				value.E("s", value.NewSeq()),
				value.E("nested", value.NewSeq(value.NewMap(), value.NewSeq())),
			),
		},
		{
			Name:     "empty root map",
			Template: value.NewMap(),
			Want:     value.NewMap(),
		},
		{
			Name:     "seq root with nulls",
			Template: value.NewSeq(value.Null{}, value.String("${nothing}"), value.Null{}),
			Want:     value.NewSeq(value.Null{}, value.Null{}, value.Null{}),
		},
		{
			Name: "lenient missing",
			Template: value.NewMap(
				value.E("a", value.String("${missing}")),
				value.E("b", value.String("${host}/${missing}")),
				value.E("${missing_key}", value.Int(1)),
			),
			Want: value.NewMap(
				value.E("a", value.String("${missing}")),
				value.E("b", value.String("db.internal/${missing}")),
				value.E("${missing_key}", value.Int(1)),
			),
		},
		{
			Name:     "deep nesting",
			Template: deep(8, value.String("${env}")),
			Want:     deep(8, value.String("prod")),
		},
	}
}

// deep wraps leaf in depth alternating maps and sequences.
func deep(depth int, leaf value.Value) value.Value {
	v := leaf
	for i := range depth {
		if i%2 == 0 {
			v = value.NewMap(value.E("level", v))
		} else {
			v = value.NewSeq(v)
		}
	}
	return v
}
