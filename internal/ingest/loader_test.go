package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoader_ParsesQuoteRows(t *testing.T) {
	input := strings.Join([]string{
		"DATE,TIME_M,BID,BIDSIZ,ASK,ASKSIZ",
		"20240103,09:30:00.123456789,100.01,3,100.03,5",
		"20240103,09:30:01,100.02,2,100.04,1",
	}, "\n")

	l := NewLoader(zap.NewNop())
	quotes, err := l.Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	want := time.Date(2024, 1, 3, 9, 30, 0, 123456789, time.UTC)
	assert.True(t, quotes[0].Timestamp.Equal(want))
	assert.Equal(t, "100.01", quotes[0].Bid.String())
	assert.Equal(t, "100.03", quotes[0].Ask.String())
	assert.Equal(t, int64(3), quotes[0].BidSize)
	assert.Equal(t, int64(5), quotes[0].AskSize)

	// Second row has no fractional seconds
	assert.Equal(t, 0, quotes[1].Timestamp.Nanosecond())
}

func TestLoader_DropsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"date,time_m,bid,bidsiz,ask,asksiz",
		"20240103,09:30:00,100.01,3,100.03,5",
		"20240103,notatime,100.01,3,100.03,5",
		"20240103,09:30:01,oops,3,100.03,5",
		"20240103,09:30:02,100.02,x,100.04,1",
		"20240103,09:30:03,100.02,2,100.04,1",
	}, "\n")

	quotes, err := NewLoader(zap.NewNop()).Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestLoader_MissingColumnFatal(t *testing.T) {
	input := "date,time_m,bid,bidsiz,asksiz\n20240103,09:30:00,100.01,3,5\n"

	_, err := NewLoader(zap.NewNop()).Load(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoader_NoParseableRowsFatal(t *testing.T) {
	input := "date,time_m,bid,bidsiz,ask,asksiz\n20240103,broken,1,1,1,1\n"

	_, err := NewLoader(zap.NewNop()).Load(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLoader_EmptyFileFatal(t *testing.T) {
	_, err := NewLoader(zap.NewNop()).Load(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoader_BlankSizesParseAsZero(t *testing.T) {
	input := "date,time_m,bid,bidsiz,ask,asksiz\n20240103,09:30:00,100.01,,100.03,\n"

	quotes, err := NewLoader(zap.NewNop()).Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, int64(0), quotes[0].BidSize)
	assert.Equal(t, int64(0), quotes[0].AskSize)
}
