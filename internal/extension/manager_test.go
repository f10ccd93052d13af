package extension

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTaskstatsExt() *SimpleExtension {
	ext := NewSimpleExtension("taskstats")
	ext.Declare("taskstats.interval", "1000", "sampling interval in ms", false, []string{"taskstats.period"}, func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return &InvalidOptionValue{Key: "taskstats.interval", Value: v}
		}
		return nil
	})
	return ext
}

// InvalidOptionValue mirrors spec.md §7's InvalidOptionValue error kind.
type InvalidOptionValue struct {
	Key, Value string
}

func (e *InvalidOptionValue) Error() string {
	return "invalid option value for " + e.Key + ": " + e.Value
}

func TestManagerSetGetViaAlias(t *testing.T) {
	m := NewManager()
	m.Register(newTaskstatsExt())

	require.NoError(t, m.Set("taskstats.interval", "500"))
	v, err := m.Get("taskstats.period")
	require.NoError(t, err)
	require.Equal(t, "500", v)
}

func TestManagerSetInvalidValueAborts(t *testing.T) {
	m := NewManager()
	m.Register(newTaskstatsExt())

	err := m.Set("taskstats.interval", "-1")
	require.Error(t, err)
	var bad *InvalidOptionValue
	require.ErrorAs(t, err, &bad)
}

func TestManagerUnknownKeyContinuesThenFails(t *testing.T) {
	m := NewManager()
	m.Register(newTaskstatsExt())

	_, err := m.Get("nonexistent.key")
	require.Error(t, err)
	var unsupported *ErrUnsupportedOption
	require.ErrorAs(t, err, &unsupported)
}

func TestManagerReadOnlySet(t *testing.T) {
	ext := NewSimpleExtension("engine")
	ext.Declare("engine.version", "1.0", "engine version", true, nil, nil)

	m := NewManager()
	m.Register(ext)

	err := m.Set("engine.version", "2.0")
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestManagerOptionsConcatenates(t *testing.T) {
	m := NewManager()
	m.Register(newTaskstatsExt())
	ext2 := NewSimpleExtension("engine")
	ext2.Declare("engine.timeout_ms", "5000", "query timeout", false, nil, nil)
	m.Register(ext2)

	opts := m.Options()
	require.Len(t, opts, 2)
}
