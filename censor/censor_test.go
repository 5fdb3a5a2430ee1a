// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an in-memory sink that keeps a copy of every write and the address of the slice it was given.
type recorder struct {
	buf    bytes.Buffer
	writes [][]byte
	addrs  []*byte

	// failAt makes the write with this index (counting from 1) fail with err. Zero never fails.
	failAt int
	err    error

	// onWrite runs before each write is recorded.
	onWrite func(n int)
}

func (r *recorder) Write(p []byte) (int, error) {
	n := len(r.writes) + 1
	if r.onWrite != nil {
		r.onWrite(n)
	}
	if r.failAt == n {
		return 0, r.err
	}
	r.writes = append(r.writes, bytes.Clone(p))
	if len(p) > 0 {
		r.addrs = append(r.addrs, &p[0])
	}
	return r.buf.Write(p)
}

// shortWriter accepts one byte less than it is given.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}

type variant struct {
	name string
	run  func(ctx context.Context, pi string, w io.Writer) (int, error)
}

func variants(chunkSizes ...int) []variant {
	vs := []variant{{name: "stream", run: Stream}}
	for _, size := range chunkSizes {
		size := size
		vs = append(vs, variant{
			name: fmt.Sprintf("chunk %d", size),
			run: func(ctx context.Context, pi string, w io.Writer) (int, error) {
				return Chunk(ctx, pi, w, size)
			},
		})
	}
	return vs
}

// reference is the simplest statement of the rule, used to check both strategies.
func reference(pi string) (string, int) {
	var sb strings.Builder
	sb.WriteString(pi[:2])
	prev := byte('0')
	count := 0
	for i := 2; i < len(pi); i++ {
		c := pi[i]
		if c < prev {
			sb.WriteByte('*')
			count++
		} else {
			sb.WriteByte(c)
		}
		prev = c
	}
	return sb.String(), count
}

func randomPi(r *rand.Rand, digits int) string {
	b := make([]byte, 0, digits+2)
	b = append(b, Prefix...)
	for i := 0; i < digits; i++ {
		b = append(b, byte('0'+r.IntN(10)))
	}
	return string(b)
}

func TestRule(t *testing.T) {
	tt := []struct {
		desc     string
		previous byte
		current  byte
		censored bool
	}{
		{desc: "bigger digit is kept", previous: '1', current: '4'},
		{desc: "equal digit is kept", previous: '5', current: '5'},
		{desc: "smaller digit is censored", previous: '4', current: '1', censored: true},
		{desc: "first digit against the sentinel is kept", previous: Sentinel, current: '0'},
		{desc: "nine after nine is kept", previous: '9', current: '9'},
		{desc: "zero after nine is censored", previous: '9', current: '0', censored: true},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			censored, next := Rule(tc.previous, tc.current)
			assert.Equal(t, tc.censored, censored)
			assert.Equal(t, tc.current, next, "the next state is always the present digit")
		})
	}
}

func TestCensorInPlace_ThreadsPrevious(t *testing.T) {
	previous := Sentinel
	first := []byte("141")
	second := []byte("59")

	assert.Equal(t, 1, censorInPlace(first, &previous))
	assert.Equal(t, byte('1'), previous, "previous holds the censored digit, not the marker")
	assert.Equal(t, 0, censorInPlace(second, &previous))
	assert.Equal(t, "14*", string(first))
	assert.Equal(t, "59", string(second))
}

func TestCensor_Scenarios(t *testing.T) {
	tt := []struct {
		desc   string
		input  string
		expect string
		count  int
	}{
		{
			desc:   "first digits of pi",
			input:  "3.1415926535897932384626433",
			expect: "3.14*59*6**589*9**38*6*6**3",
			count:  11,
		},
		{
			desc:   "single digit",
			input:  "3.0",
			expect: "3.0",
			count:  0,
		},
		{
			desc:   "empty suffix",
			input:  "3.",
			expect: "3.",
			count:  0,
		},
		{
			desc:   "strictly decreasing",
			input:  "3.9876543210",
			expect: "3.9*********",
			count:  9,
		},
		{
			desc:   "equal digits are never censored",
			input:  "3.1111222",
			expect: "3.1111222",
			count:  0,
		},
	}

	for _, v := range variants(1, 2, 3, DefaultChunkSize) {
		for _, tc := range tt {
			t.Run(v.name+"/"+tc.desc, func(t *testing.T) {
				rec := &recorder{}
				count, err := v.run(context.Background(), tc.input, rec)
				require.NoError(t, err)
				assert.Equal(t, tc.count, count)
				assert.Equal(t, tc.expect, rec.buf.String())
			})
		}
	}
}

func TestCensor_MalformedInput(t *testing.T) {
	tt := []struct {
		desc  string
		input string
		kind  MalformedKind
	}{
		{desc: "no separator", input: "314159", kind: MissingSeparator},
		{desc: "empty input", input: "", kind: MissingSeparator},
		{desc: "only the integer part", input: "3", kind: MissingSeparator},
		{desc: "wrong integer part", input: "4.1415", kind: UnexpectedIntegerPart},
		{desc: "missing integer part", input: ".1415", kind: UnexpectedIntegerPart},
		{desc: "long integer part", input: "31.415", kind: UnexpectedIntegerPart},
		{desc: "second separator", input: "3.14.15", kind: ExtraSeparator},
	}

	for _, v := range variants(1, DefaultChunkSize) {
		for _, tc := range tt {
			t.Run(v.name+"/"+tc.desc, func(t *testing.T) {
				rec := &recorder{}
				count, err := v.run(context.Background(), tc.input, rec)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedInput)
				assert.NotErrorIs(t, err, ErrSinkWrite)

				var malformed MalformedInputError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, tc.kind, malformed.Kind)

				assert.Zero(t, count)
				assert.Empty(t, rec.writes, "no write happens before validation")
			})
		}
	}
}

func TestMalformedInputError_TruncatesInput(t *testing.T) {
	_, _, err := Split(strings.Repeat("1", 100))
	var malformed MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, strings.Repeat("1", previewLength)+"...", malformed.Input)
}

func TestCensor_ChunkSizeInvariance(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 14))

	for _, digits := range []int{1, 7, 100, DefaultChunkSize - 1, DefaultChunkSize, DefaultChunkSize + 1, 3*DefaultChunkSize + 17} {
		pi := randomPi(r, digits)
		expect, expectCount := reference(pi)

		sizes := []int{1, 2, 5, 64, DefaultChunkSize, digits, digits + 1}
		for _, v := range variants(sizes...) {
			t.Run(fmt.Sprintf("%d digits/%s", digits, v.name), func(t *testing.T) {
				rec := &recorder{}
				count, err := v.run(context.Background(), pi, rec)
				require.NoError(t, err)
				assert.Equal(t, expectCount, count)
				assert.Equal(t, expect, rec.buf.String())
			})
		}
	}
}

func TestCensor_OutputProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(27, 18))

	for i := 0; i < 50; i++ {
		pi := randomPi(r, 1+r.IntN(500))
		rec := &recorder{}
		count, err := Chunk(context.Background(), pi, rec, 1+r.IntN(32))
		require.NoError(t, err)

		out := rec.buf.String()
		require.Len(t, out, len(pi))
		assert.True(t, strings.HasPrefix(out, Prefix), "prefix is never altered")
		assert.Equal(t, pi[2], out[2], "the first digit is never censored")
		assert.Equal(t, strings.Count(out, string(Marker)), count)

		for j := 3; j < len(pi); j++ {
			if pi[j] == pi[j-1] {
				assert.Equal(t, pi[j], out[j], "equal adjacent digits are never censored, input=%s, index=%d", pi, j)
			}
			if out[j] != Marker {
				assert.Equal(t, pi[j], out[j])
			}
		}
	}
}

func TestStream_WriteOrder(t *testing.T) {
	rec := &recorder{}
	_, err := Stream(context.Background(), "3.1415", rec)
	require.NoError(t, err)

	assert.Equal(t, [][]byte{[]byte("3"), []byte("."), []byte("14*5")}, rec.writes)
}

func TestChunk_WriteOrderAndBufferReuse(t *testing.T) {
	pi := "3.1415926535"
	rec := &recorder{}
	_, err := Chunk(context.Background(), pi, rec, 4)
	require.NoError(t, err)

	expect := [][]byte{
		[]byte("3."),
		[]byte("14*5"),
		[]byte("9*6*"),
		[]byte("*5"),
	}
	assert.Equal(t, expect, rec.writes)

	// Every chunk after the prefix is written from the same buffer.
	require.Len(t, rec.addrs, 4)
	for _, addr := range rec.addrs[2:] {
		assert.Same(t, rec.addrs[1], addr)
	}
}

func TestChunk_DefaultSize(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	pi := randomPi(r, 2*DefaultChunkSize+1)

	for _, size := range []int{0, -1} {
		rec := &recorder{}
		_, err := Chunk(context.Background(), pi, rec, size)
		require.NoError(t, err)
		require.Len(t, rec.writes, 4)
		assert.Len(t, rec.writes[1], DefaultChunkSize)
		assert.Len(t, rec.writes[2], DefaultChunkSize)
		assert.Len(t, rec.writes[3], 1)
	}
}

func TestCensor_SinkFailure(t *testing.T) {
	errClosed := errors.New("sink closed")
	pi := "3.1415926535897932384626433"

	tt := []struct {
		desc   string
		v      variant
		failAt int
		step   string
		offset int
		writes int
	}{
		{desc: "stream integer part", v: variants()[0], failAt: 1, step: "integer part", offset: 0, writes: 0},
		{desc: "stream separator", v: variants()[0], failAt: 2, step: "separator", offset: 1, writes: 1},
		{desc: "stream suffix", v: variants()[0], failAt: 3, step: "suffix", offset: 2, writes: 2},
		{desc: "chunk prefix", v: variants(4)[1], failAt: 1, step: "prefix", offset: 0, writes: 0},
		{desc: "chunk first chunk", v: variants(4)[1], failAt: 2, step: "chunk", offset: 2, writes: 1},
		{desc: "chunk later chunk", v: variants(4)[1], failAt: 4, step: "chunk", offset: 10, writes: 3},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			rec := &recorder{failAt: tc.failAt, err: errClosed}
			count, err := tc.v.run(context.Background(), pi, rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSinkWrite)
			assert.ErrorIs(t, err, errClosed)
			assert.NotErrorIs(t, err, ErrMalformedInput)
			assert.Zero(t, count)

			var sinkErr SinkWriteError
			require.ErrorAs(t, err, &sinkErr)
			assert.Equal(t, tc.step, sinkErr.Step)
			assert.Equal(t, tc.offset, sinkErr.Offset)

			assert.Len(t, rec.writes, tc.writes, "no write is attempted after a failure")
		})
	}
}

func TestCensor_ShortWrite(t *testing.T) {
	for _, v := range variants(DefaultChunkSize) {
		t.Run(v.name, func(t *testing.T) {
			_, err := v.run(context.Background(), "3.14", shortWriter{})
			assert.ErrorIs(t, err, ErrSinkWrite)
			assert.ErrorIs(t, err, io.ErrShortWrite)
		})
	}
}

func TestCensor_CancelledBeforeWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, v := range variants(1) {
		t.Run(v.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := v.run(ctx, "3.1415", rec)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, rec.writes)
		})
	}
}

func TestChunk_CancelledBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel while the first chunk is being written.
	rec := &recorder{onWrite: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	_, err := Chunk(ctx, "3.1415926535", rec, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "3.14", rec.buf.String(), "output stops after the chunk in flight")
}

func TestCensor_ConcurrentCallsAreIndependent(t *testing.T) {
	r := rand.New(rand.NewPCG(8, 8))
	pi := randomPi(r, 10_000)
	expect, expectCount := reference(pi)

	var wg sync.WaitGroup
	for _, v := range variants(1, 7, DefaultChunkSize) {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(v variant) {
				defer wg.Done()
				var buf bytes.Buffer
				count, err := v.run(context.Background(), pi, &buf)
				assert.NoError(t, err)
				assert.Equal(t, expectCount, count)
				assert.Equal(t, expect, buf.String())
			}(v)
		}
	}
	wg.Wait()
}

func TestParseStrategy(t *testing.T) {
	tt := []struct {
		name   string
		expect Strategy
		err    bool
	}{
		{name: "iterative", expect: Iterative},
		{name: "inplace", expect: InPlace},
		{name: " InPlace ", expect: InPlace},
		{name: "ITERATIVE", expect: Iterative},
		{name: "chunked", err: true},
		{name: "", err: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ParseStrategy(tc.name)
			if tc.err {
				var unknown UnknownStrategyError
				assert.ErrorAs(t, err, &unknown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, s)
		})
	}
}

func TestOptions_Run(t *testing.T) {
	pi := "3.1415926535897932384626433"
	expect := "3.14*59*6**589*9**38*6*6**3"

	tt := []struct {
		desc   string
		opts   Options
		writes int
	}{
		{desc: "zero value is in-place", opts: Options{}, writes: 2},
		{desc: "iterative", opts: Options{Strategy: Iterative}, writes: 3},
		{desc: "in-place with small chunks", opts: Options{Strategy: InPlace, ChunkSize: 5}, writes: 6},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			rec := &recorder{}
			count, err := tc.opts.Run(context.Background(), pi, rec)
			require.NoError(t, err)
			assert.Equal(t, 11, count)
			assert.Equal(t, expect, rec.buf.String())
			assert.Len(t, rec.writes, tc.writes)
		})
	}

	_, err := Options{Strategy: "bogus"}.Run(context.Background(), pi, io.Discard)
	var unknown UnknownStrategyError
	assert.ErrorAs(t, err, &unknown)
}
