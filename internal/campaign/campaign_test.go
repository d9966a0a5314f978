package campaign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func def(id string, locations []string, start, end string, maxExposures int) Definition {
	return Definition{
		CampaignID:           id,
		Locations:            locations,
		TimeWindow:           TimeWindow{Start: start, End: end},
		MaxExposuresPerPlate: maxExposures,
		AdContent:            "AD_" + id,
	}
}

func TestCatalogOrderPreserved(t *testing.T) {
	c, skipped := New([]Definition{
		def("B", []string{"CHECK_01"}, "08:00", "20:00", 3),
		def("A", []string{"CHECK_01"}, "08:00", "20:00", 3),
	})
	require.Empty(t, skipped)

	got := c.For("CHECK_01")
	require.Len(t, got, 2)
	require.Equal(t, "B", got[0].CampaignID)
	require.Equal(t, "A", got[1].CampaignID)
}

func TestCatalogForFiltersByCheckpoint(t *testing.T) {
	c, skipped := New([]Definition{
		def("A", []string{"CHECK_01", "CHECK_02"}, "08:00", "20:00", 3),
		def("B", []string{"CHECK_03"}, "08:00", "20:00", 3),
	})
	require.Empty(t, skipped)

	require.Len(t, c.For("CHECK_02"), 1)
	require.Equal(t, "A", c.For("CHECK_02")[0].CampaignID)
	require.Empty(t, c.For("CHECK_09"))
}

func TestWindowInclusiveBoundaries(t *testing.T) {
	c, skipped := New([]Definition{def("A", []string{"X"}, "08:00", "20:00", 3)})
	require.Empty(t, skipped)
	d := c.For("X")[0]

	require.True(t, d.InWindow(8*60), "start boundary is in window")
	require.True(t, d.InWindow(20*60), "end boundary is in window")
	require.True(t, d.InWindow(14*60+30))
	require.False(t, d.InWindow(8*60-1))
	require.False(t, d.InWindow(20*60+1))
}

func TestMalformedDefinitionsExcluded(t *testing.T) {
	cases := []struct {
		name string
		d    Definition
	}{
		{"cross-midnight window", def("A", []string{"X"}, "22:00", "02:00", 3)},
		{"bad start time", def("B", []string{"X"}, "8am", "20:00", 3)},
		{"hour out of range", def("C", []string{"X"}, "24:00", "25:00", 3)},
		{"zero cap", def("D", []string{"X"}, "08:00", "20:00", 0)},
		{"negative cap", def("E", []string{"X"}, "08:00", "20:00", -1)},
		{"no locations", def("F", nil, "08:00", "20:00", 3)},
		{"empty campaign id", def("", []string{"X"}, "08:00", "20:00", 3)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, skipped := New([]Definition{tc.d})
			require.Len(t, skipped, 1)
			require.Equal(t, 0, c.Len())
		})
	}
}

func TestMalformedDefinitionDoesNotPoisonCatalog(t *testing.T) {
	c, skipped := New([]Definition{
		def("BAD", []string{"X"}, "22:00", "02:00", 3),
		def("GOOD", []string{"X"}, "08:00", "20:00", 3),
	})
	require.Len(t, skipped, 1)
	require.ErrorContains(t, skipped[0], "BAD")
	require.Equal(t, 1, c.Len())
	require.Equal(t, "GOOD", c.For("X")[0].CampaignID)
}

func TestLoadEmbeddedDefault(t *testing.T) {
	c, skipped, err := Load("")
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Equal(t, 2, c.Len())

	got := c.For("CHECK_01")
	require.Len(t, got, 1)
	require.Equal(t, "CAMP_001", got[0].CampaignID)
	require.Equal(t, "AD_001", got[0].AdContent)
	require.Equal(t, 3, got[0].MaxExposuresPerPlate)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaigns.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"campaign_id":"CAMP_X","locations":["CHECK_09"],
		 "time_window":{"start":"00:00","end":"23:59"},
		 "max_exposures_per_plate":1,"ad_content":"AD_X"}
	]`), 0o600))

	c, skipped, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Equal(t, 1, c.Len())
	require.Equal(t, "CAMP_X", c.For("CHECK_09")[0].CampaignID)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, _, err = Load(path)
	require.Error(t, err)
}
