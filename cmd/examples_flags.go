package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/zoobzio/funcz"
)

// FlagsExample shows permission flags packed into a FlagField8 and
// consumers composed with Then and Chain.
type FlagsExample struct{}

func (*FlagsExample) Name() string { return "flags" }

func (*FlagsExample) Description() string {
	return "Flag fields and consumer chains"
}

const (
	permRead = iota
	permWrite
	permExec
	permAdmin
)

var permNames = []string{"read", "write", "exec", "admin"}

func (*FlagsExample) Demo(_ context.Context, out io.Writer) error {
	header(out, "FLAG FIELDS")

	perms := funcz.NewFlagField8(0)
	perms.SetAt(permRead, true)
	perms.SetAt(permWrite, true)
	fmt.Fprintf(out, "  bits %s, %d set\n", perms.String(), perms.Count())

	var names []string
	perms.ForEachSet(func(i int) { names = append(names, permNames[i]) })
	result(out, true, "granted: %s", strings.Join(names, ", "))

	readWrite := uint8(1<<permRead | 1<<permWrite)
	result(out, perms.Get(readWrite), "has read and write")
	result(out, !perms.GetAt(permAdmin), "not admin")

	view := perms.ReadOnly()
	perms.Toggle(permExec)
	result(out, view.GetAt(permExec), "read-only view sees exec after toggle")

	header(out, "CONSUMER CHAINS")
	var log []string
	record := func(prefix string) funcz.Consumer[string] {
		return func(s string) { log = append(log, prefix+s) }
	}
	audit := funcz.Chain(record("validate:"), record("store:")).Then(record("notify:"))
	audit("invoice-7")
	result(out, len(log) == 3, "ran %s", strings.Join(log, " → "))
	return nil
}

func (*FlagsExample) Benchmark(b *testing.B) {
	perms := funcz.NewFlagField64(0)
	var sink int
	count := funcz.Consumer[int](func(i int) { sink += i })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		perms.SetAt(i%64, true)
		perms.ForEachSet(count)
		perms.Clear()
	}
	_ = sink
}
