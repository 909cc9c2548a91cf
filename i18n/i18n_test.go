package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogs(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "de"}, b.Locales())

	l := b.Localizer()
	assert.Equal(t, "en", l.Locale())
	assert.Equal(t, "Something went wrong. Please try again.", l.Translate("defaultError"))
}

func TestLocalizerNegotiation(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)

	tests := []struct {
		name   string
		prefs  []string
		locale string
	}{
		{"exact", []string{"de"}, "de"},
		{"regional", []string{"de-AT"}, "de"},
		{"accept header", []string{"fr-CH, de;q=0.8, en;q=0.5"}, "de"},
		{"unknown falls back", []string{"ja"}, "en"},
		{"garbage ignored", []string{"!!"}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := b.Localizer(tt.prefs...)
			assert.Equal(t, tt.locale, l.Locale())
		})
	}
}

func TestTranslateFallbackChain(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)
	require.NoError(t, b.Add("de", []byte(`onlyGerman: "Nur Deutsch"`)))
	require.NoError(t, b.Add("en", []byte(`onlyEnglish: "English only"`)))

	de := b.Localizer("de")
	assert.Equal(t, "Nur Deutsch", de.Translate("onlyGerman"))
	assert.Equal(t, "English only", de.Translate("onlyEnglish"))
	assert.Equal(t, "missingKey", de.Translate("missingKey"))

	var nilLocalizer *Localizer
	assert.Equal(t, "key", nilLocalizer.Translate("key"))
}

func TestLoadDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(`defaultError: "Custom failure"`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.yaml"), []byte(`defaultError: "Une erreur est survenue."`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	b, err := New("en")
	require.NoError(t, err)
	before := b.Localizer("en")
	require.NoError(t, b.LoadDir(dir))

	assert.Equal(t, "Custom failure", b.Localizer("en").Translate("defaultError"))
	assert.Equal(t, "Une erreur est survenue.", b.Localizer("fr").Translate("defaultError"))
	assert.Equal(t, "Something went wrong. Please try again.", before.Translate("defaultError"))
}

func TestNewRejectsUnknownDefault(t *testing.T) {
	_, err := New("xx-invalid-")
	require.Error(t, err)

	_, err = New("ja")
	require.Error(t, err)
}

func TestAddRejectsMalformedYAML(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)
	require.Error(t, b.Add("en", []byte("key: [unterminated")))
}
