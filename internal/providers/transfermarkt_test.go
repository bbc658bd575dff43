package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFromInitData_Euros(t *testing.T) {
	html := `<script>TM.initData = {"marketValue": 25000000};</script>`

	mv := valueFromInitData(html)
	require.NotNil(t, mv)
	assert.Equal(t, 25.0, *mv)
}

func TestValueFromInitData_CentsDetectedByMagnitude(t *testing.T) {
	// Some regional domains report cents instead of euros.
	html := `<script>TM.initData = {"marketValue": 2500000000};</script>`

	mv := valueFromInitData(html)
	require.NotNil(t, mv)
	assert.Equal(t, 25.0, *mv)
}

func TestValueFromInitData_ZeroAndMissing(t *testing.T) {
	assert.Nil(t, valueFromInitData(`TM.initData = {"marketValue": 0};`))
	assert.Nil(t, valueFromInitData(`TM.initData = {"other": 1};`))
	assert.Nil(t, valueFromInitData(`<p>no json here</p>`))
	assert.Nil(t, valueFromInitData(`TM.initData = {broken};`))
}

func TestValueFromText_Millions(t *testing.T) {
	mv := valueFromText(`<div class="value">€ 25.00 m</div>`)
	require.NotNil(t, mv)
	assert.Equal(t, 25.0, *mv)
}

func TestValueFromText_Thousands(t *testing.T) {
	mv := valueFromText(`<div>€ 500 k</div>`)
	require.NotNil(t, mv)
	assert.Equal(t, 0.5, *mv)
}

func TestValueFromText_LocaleDecimals(t *testing.T) {
	// European style: dot thousands, comma decimal.
	mv := valueFromText(`€ 1.234,56 m`)
	require.NotNil(t, mv)
	assert.Equal(t, 1234.56, *mv)

	// Comma decimal alone.
	mv = valueFromText(`€ 12,5 m`)
	require.NotNil(t, mv)
	assert.Equal(t, 12.5, *mv)

	// US style: comma thousands, dot decimal.
	mv = valueFromText(`€ 1,234.56 m`)
	require.NotNil(t, mv)
	assert.Equal(t, 1234.56, *mv)
}

func TestValueFromText_NoMatch(t *testing.T) {
	assert.Nil(t, valueFromText(`no currency anywhere`))
	assert.Nil(t, valueFromText(`$ 25.00 m`))
}

func TestCandidateProfileLinks(t *testing.T) {
	html := `
	<table class="items">
	  <tr><td><a href="/erling-haaland/profil/spieler/418560">Erling Haaland</a></td></tr>
	  <tr><td><a href="/erling-haaland/profil/spieler/418560">duplicate</a></td></tr>
	  <tr><td><a href="https://www.transfermarkt.com/other/profil/spieler/99">Other</a></td></tr>
	  <tr><td><a href="/some/other/page">not a profile</a></td></tr>
	</table>`

	links := candidateProfileLinks(html, "https://www.transfermarkt.com")
	require.Len(t, links, 2)
	assert.Equal(t, "https://www.transfermarkt.com/erling-haaland/profil/spieler/418560", links[0])
	assert.Equal(t, "https://www.transfermarkt.com/other/profil/spieler/99", links[1])
}

func TestCandidateProfileLinks_CapsCandidates(t *testing.T) {
	html := ""
	for i := 0; i < 10; i++ {
		html += `<a href="/p` + string(rune('a'+i)) + `/profil/spieler/` + string(rune('0'+i)) + `">p</a>`
	}

	links := candidateProfileLinks(html, "https://www.transfermarkt.com")
	assert.Len(t, links, maxProfileCandidates)
}

func TestNormalizeDecimal(t *testing.T) {
	assert.Equal(t, "1234.56", normalizeDecimal("1.234,56"))
	assert.Equal(t, "1234.56", normalizeDecimal("1,234.56"))
	assert.Equal(t, "12.5", normalizeDecimal("12,5"))
	assert.Equal(t, "12.5", normalizeDecimal("12.5"))
	assert.Equal(t, "500", normalizeDecimal("500"))
}
