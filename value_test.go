package ctxlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cyclic struct {
	Name string  `json:"name"`
	Next *cyclic `json:"next"`
}

func newCycle() *cyclic {
	c := &cyclic{Name: "loop"}
	c.Next = c
	return c
}

type named string

func TestKindOf(t *testing.T) {
	var nilMap map[string]int
	var nilPtr *cyclic
	var nilErr error

	tests := []struct {
		name string
		v    any
		want Kind
	}{
		{"string", "x", KindString},
		{"named string", named("x"), KindString},
		{"bytes", []byte("x"), KindString},
		{"int", 1, KindNumber},
		{"float", 1.5, KindNumber},
		{"json number", json.Number("12"), KindNumber},
		{"bool", false, KindBoolean},
		{"big int", big.NewInt(7), KindBigInt},
		{"nil", nil, KindNull},
		{"nil error", nilErr, KindNull},
		{"nil map", nilMap, KindNull},
		{"nil pointer", nilPtr, KindNull},
		{"undefined", Undefined, KindUndefined},
		{"map", map[string]int{"a": 1}, KindObject},
		{"struct", cyclic{}, KindObject},
		{"error", errors.New("e"), KindObject},
		{"stringer", time.Second, KindObject},
		{"slice", []int{1}, KindArray},
		{"array", [2]int{1, 2}, KindArray},
		{"func", func() {}, KindFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.v))
		})
	}
}

func TestRenderMessage(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"string", "hello", "hello"},
		{"int", -3, "-3"},
		{"uint", uint8(200), "200"},
		{"float", 0.25, "0.25"},
		{"large float", 1e21, "1000000000000000000000"},
		{"whole float", 2.0, "2"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(-1), "-Infinity"},
		{"bool", true, "true"},
		{"big int", new(big.Int).Lsh(big.NewInt(1), 70), "1180591620717411303424"},
		{"nil", nil, "null"},
		{"undefined", Undefined, "undefined"},
		{"array", []any{1, nil, "b", Undefined}, "1,,b,"},
		{"error", errors.New("bad"), "bad"},
		{"stringer", 2 * time.Second, "2s"},
		{"func", func(int) {}, "func(int)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderMessage(tt.v))
		})
	}
}

func TestRenderArgument(t *testing.T) {
	text, err := renderArgument(map[string]any{"a": []int{1}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1]}`, text)

	text, err = renderArgument("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", text)

	text, err = renderArgument(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "1m0s", text)

	text, err = renderArgument(newCycle())
	require.Error(t, err)
	assert.Equal(t, FallbackMarker, text)
}

func TestRemoteText(t *testing.T) {
	assert.Equal(t, "plain", remoteText("plain"))
	assert.Equal(t, "42", remoteText(42))
	assert.Equal(t, "null", remoteText(nil))
	assert.Equal(t, "undefined", remoteText(Undefined))
	assert.Equal(t, `{"id":1}`, remoteText(map[string]int{"id": 1}))
	assert.Equal(t, `[1,2]`, remoteText([]int{1, 2}))
	assert.NotEqual(t, FallbackMarker, remoteText(newCycle()))
}

func TestSubstitute(t *testing.T) {
	out, errs := substitute("cycle {0} then {1}", []any{newCycle(), "ok"})
	assert.Equal(t, "cycle "+FallbackMarker+" then ok", out)
	require.Len(t, errs, 1)

	out, errs = substitute("{10} {1}", []any{"a", "b"})
	assert.Equal(t, "{10} b", out)
	assert.Empty(t, errs)

	out, _ = substitute("{x} {0}", []any{"a"})
	assert.Equal(t, "{x} a", out)
}

func TestCyclicMessageDoesNotPanic(t *testing.T) {
	env := newTestEnv(t, settingsAt(SeverityInfo), noColor)
	log := env.svc.New()

	assert.NotPanics(t, func() {
		log.InfoArgs("value {0}", newCycle())
		log.Info("params", WithParams(newCycle()))
		log.Data("cycle", newCycle())
	})
	assert.Contains(t, env.stdout.String(), "value "+FallbackMarker)
	assert.Contains(t, env.stdout.String(), "params "+FallbackMarker)
	assert.Contains(t, env.diag.String(), diagMsgValueUnserializable)
	assert.Contains(t, env.diag.String(), diagMsgParamsUnserializable)
}

func TestRenderMessage_SelfReference(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		s := []any{"a", nil}
		s[1] = s
		assert.Equal(t, "a,", renderMessage(s))
	})

	t.Run("map", func(t *testing.T) {
		m := map[string]any{"k": 1}
		m["self"] = m
		assert.Equal(t, "map[k:1 self:"+circularMarker+"]", renderMessage(m))
	})

	t.Run("map inside slice", func(t *testing.T) {
		m := map[string]any{}
		s := []any{m}
		m["list"] = s
		assert.Equal(t, "map[list:"+circularMarker+"]", renderMessage(s))
	})

	t.Run("pointer field", func(t *testing.T) {
		assert.Contains(t, renderMessage(newCycle()), "&{loop 0x")
	})

	t.Run("shared values are not cycles", func(t *testing.T) {
		inner := []any{1}
		assert.Equal(t, "1,1", renderMessage([]any{inner, inner}))

		shared := map[string]int{"n": 1}
		assert.Equal(t, "map[a:map[n:1] b:map[n:1]]", renderMessage(map[string]any{"a": shared, "b": shared}))
	})

	t.Run("depth limit", func(t *testing.T) {
		var nested any = "x"
		for i := 0; i < maxRenderDepth+5; i++ {
			nested = []any{nested}
		}
		assert.Equal(t, maxDepthMarker, renderMessage(nested))

		deep := map[string]any{"v": "x"}
		for i := 0; i < maxRenderDepth+5; i++ {
			deep = map[string]any{"v": deep}
		}
		assert.Contains(t, renderMessage(deep), maxDepthMarker)
	})
}

func TestRenderMessage_MatchesDefaultFormat(t *testing.T) {
	values := []any{
		map[string]int{"b": 2, "a": 1},
		map[string][]int{"a": {1, 2}},
		row{ID: 1, Name: "x"},
		&row{ID: 2, Name: "y"},
		struct {
			Err  error
			Wait time.Duration
		}{errors.New("bad"), time.Second},
	}
	for _, v := range values {
		assert.Equal(t, fmt.Sprint(v), renderMessage(v))
	}
}

func TestSelfReferencingMessage(t *testing.T) {
	env := newTestEnv(t, remoteSettings(SeverityInfo, "http://unused"), noColor)
	log := env.svc.New()

	s := []any{"a", nil}
	s[1] = s
	m := map[string]any{}
	m["self"] = m

	assert.NotPanics(t, func() {
		log.Info(s)
		log.Info(m)
		log.InfoArgs("list {0}", s)
	})
	require.NoError(t, env.svc.Close())

	assert.Equal(t, []string{
		"a,",
		"map[self:" + circularMarker + "]",
		"list " + FallbackMarker,
	}, lines(env.stdout.String()))

	recs := env.fwd.Records()
	require.Len(t, recs, 3)
	texts := []string{recs[0].RemoteText, recs[1].RemoteText, recs[2].RemoteText}
	assert.ElementsMatch(t, []string{"a,", "map[self:" + circularMarker + "]", "list " + FallbackMarker}, texts)
}
