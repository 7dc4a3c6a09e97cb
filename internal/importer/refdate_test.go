package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCardDate(t *testing.T) {
	tests := []struct {
		name     string
		bankDate string
		ref1     string
		want     string
	}{
		{"same month", "2018-10-19", "BUS/MRT 2431992 SI NG 10OCT", "2018-10-10"},
		{"december posted in january", "2019-01-27", "GRAB FOOD SINGAPORE SG 20DEC", "2018-12-20"},
		{"december posted in december", "2018-12-27", "GRAB FOOD SINGAPORE SG 20DEC", "2018-12-20"},
		{"november posted in january keeps year", "2019-01-02", "SHOP SG 30NOV", "2019-11-30"},
		{"mixed case month", "2019-03-05", "KOUFU SI NG 03mAr", "2019-03-03"},
		{"blank", "2019-03-05", "", "2019-03-05"},
		{"whitespace only", "2019-03-05", "   \t ", "2019-03-05"},
		{"no whitespace", "2019-03-05", "03MAR", "2019-03-05"},
		{"token too long", "2019-03-05", "KOUFU 103MAR", "2019-03-05"},
		{"token too short", "2019-03-05", "KOUFU 3MAR", "2019-03-05"},
		{"not a month", "2019-03-05", "KOUFU 03XYZ", "2019-03-05"},
		{"letters for day", "2019-03-05", "KOUFU ABMAR", "2019-03-05"},
		{"day out of range", "2019-02-05", "KOUFU 30FEB", "2019-02-05"},
		{"trailing whitespace", "2019-03-05", "KOUFU 03MAR ", "2019-03-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := mustDate(t, tt.bankDate)
			got := ResolveCardDate(bank, tt.ref1, quietLogger())
			assert.Equal(t, mustDate(t, tt.want), got)
		})
	}
}

func TestLastWord(t *testing.T) {
	assert.Equal(t, "10OCT", lastWord("BUS/MRT SI NG 10OCT"))
	assert.Equal(t, "20DEC", lastWord("a . . . 20DEC"))
	assert.Equal(t, "", lastWord("10OCT"))
	assert.Equal(t, "", lastWord("x "))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}
