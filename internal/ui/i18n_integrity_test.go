package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/config"
)

var translationKeys = []string{
	config.TKeyWinTitle,
	config.TKeyWinMain,
	config.TKeyMenuOpen,
	config.TKeyMenuImport,
	config.TKeyMenuSettings,
	config.TKeyTrayStatus,
	config.TKeyTrayStatusZero,
	config.TKeyNotifStart,
	config.TKeyNotifSuccess,
	config.TKeyNotifError,
	config.TKeyModeCardDAV,
	config.TKeyModeLocal,
	config.TKeyLblLanguage,
	config.TKeyHelpLanguage,
	config.TKeyLblMinutes,
	config.TKeyLblRefresh,
	config.TKeyHelpInterval,
	config.TKeyLblPort,
	config.TKeyHelpPort,
	config.TKeyLblGeneral,
	config.TKeyLblEnableRem,
	config.TKeyUnitDays,
	config.TKeyUnitHours,
	config.TKeyUnitMinutes,
	config.TKeyDirBefore,
	config.TKeyDirAfter,
	config.TKeyLblNotif,
	config.TKeyBtnSave,
	config.TKeyBtnCancel,
	config.TKeyLblFooter,
	config.TKeyBtnBrowse,
	config.TKeyLblURL,
	config.TKeyHelpURL,
	config.TKeyLblUser,
	config.TKeyLblPass,
	config.TKeyLblSource,
	config.TKeyCmdPlaceholder,
	config.TKeyHelpText,
	config.TKeyHelpTitle,
	config.TKeyTabPersons,
	config.TKeyTabCompanies,
	config.TKeyTabEvents,
	config.TKeyColName,
	config.TKeyColPhone,
	config.TKeyColEmail,
	config.TKeyColAddress,
	config.TKeyColCompany,
	config.TKeyColDate,
	config.TKeyColDesc,
	config.TKeyColTags,
	config.TKeyErrDuplicate,
	config.TKeyErrNotFound,
	config.TKeyErrUnknownCmd,
	config.TKeyErrFormat,
	config.TKeyErrIndex,
	config.TKeyErrDate,
	config.TKeyErrName,
	config.TKeyErrNotEdited,
	config.TKeyErrSave,
	config.TKeyErrUnexpected,
	config.TKeyErrPortReq,
	config.TKeyErrPortNum,
	config.TKeyErrPortRange,
	config.TKeyErrNilArgument,
}

func loadLocale(t *testing.T, lang string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
	require.NoErrorf(t, err, "Must load active.%s.json", lang)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &m), "JSON must be valid")
	return m
}

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale, and that locales do not drift apart.
func TestI18nIntegrity(t *testing.T) {
	en := loadLocale(t, "en")

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			m := loadLocale(t, lang)
			for _, key := range translationKeys {
				assert.Containsf(t, m, key, "Key '%s' is missing in active.%s.json", key, lang)
			}
			assert.Len(t, m, len(en), "locales must define the same keys")
		})
	}
}

func TestI18nIntegrity_PluralForms(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		forms, ok := loadLocale(t, lang)[config.TKeyTrayStatus].(map[string]interface{})
		require.Truef(t, ok, "%s must be a plural object in %s", config.TKeyTrayStatus, lang)
		assert.Contains(t, forms, "one")
		assert.Contains(t, forms, "other")
	}
}
