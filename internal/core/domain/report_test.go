package domain_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestBatchReport(t *testing.T) {
	var report domain.BatchReport
	require.NoError(t, report.Err())

	errBroken := errors.New("broken")
	report.Add(domain.FileResult{Source: "a.png", BytesIn: 10, BytesOut: 8})
	report.Add(domain.FileResult{Source: "b.png", Err: errBroken})
	report.Add(domain.FileResult{Source: "c.png", BytesIn: 4, BytesOut: 4})

	assert.Equal(t, 3, report.Len())
	assert.Equal(t, 2, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	require.ErrorIs(t, report.Err(), errBroken)

	results := report.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "a.png", results[0].Source)
	assert.True(t, results[1].Failed())

	results[0].Source = "mutated"
	assert.Equal(t, "a.png", report.Results()[0].Source)
}

func TestBatchReport_ConcurrentAdd(t *testing.T) {
	var report domain.BatchReport
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			report.Add(domain.FileResult{Source: "x"})
		})
	}
	wg.Wait()
	assert.Equal(t, 50, report.Len())
}

func TestAnnotate(t *testing.T) {
	err := domain.Annotate(domain.ErrInputNotFound, "path", "src/js/index.js")
	require.ErrorIs(t, err, domain.ErrInputNotFound)
	assert.Equal(t, domain.ErrInputNotFound.Error(), err.Error())
}

func TestWrapAs(t *testing.T) {
	cause := errors.New("exec: \"sass\": executable file not found")
	err := domain.WrapAs(cause, domain.ErrStyleCompilerUnavailable)

	require.ErrorIs(t, err, domain.ErrStyleCompilerUnavailable)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, domain.ErrStyleCompilerUnavailable.Error()+": "+cause.Error(), err.Error())
	assert.NoError(t, domain.WrapAs(nil, domain.ErrStyleCompilerUnavailable))
}
