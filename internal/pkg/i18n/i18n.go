package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

var errNotInitialized = errors.New("i18n: Init must be called before Load")

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init builds the message bundle with the embedded en and ja locales.
func Init() {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, path := range []string{"locales/active.en.json", "locales/active.ja.json"} {
		// Embedded files are part of the binary; a parse failure is a build defect.
		if _, err := b.LoadMessageFileFS(embedded, path); err != nil {
			panic(err)
		}
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
}

// Load adds an external message file, e.g. an operator-provided override.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		return errNotInitialized
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

// T localizes messageID for an Accept-Language style list. Unknown ids
// come back verbatim.
func T(acceptLanguage, messageID string, data map[string]interface{}) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		return messageID
	}

	loc := goi18n.NewLocalizer(b, acceptLanguage)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
