// Package i18n предоставляет поддержку локализации.
package i18n

import (
	"strings"
	"sync"
)

// Language представляет язык интерфейса.
type Language string

const (
	JA Language = "ja"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = JA // Язык по умолчанию
)

// Переводы для всех поддерживаемых языков.
var translations = map[Language]map[string]string{
	JA: {
		// Приложение
		"app_name":     "Taiwa",
		"app_tooltip":  "Taiwa - 音声対話AI",
		"window_title": "音声対話AI",

		// Меню трея
		"tray_ready":              "待機中",
		"tray_recording":          "録音中...",
		"tray_processing":         "処理中...",
		"tray_open":               "ウィンドウを開く",
		"tray_open_hint":          "会話ウィンドウを表示",
		"tray_notifications":      "通知",
		"tray_notifications_hint": "デスクトップ通知を表示",
		"tray_server":             "サーバー...",
		"tray_server_hint":        "バックエンドのアドレスを変更",
		"tray_hotkey":             "ホットキー...",
		"tray_hotkey_hint":        "録音の開始/停止キーを変更",
		"tray_language":           "English",
		"tray_language_hint":      "Switch interface to English",
		"tray_quit":               "終了",
		"tray_quit_hint":          "アプリケーションを閉じる",

		// Уведомления
		"notify_recording":      "録音中...",
		"notify_recording_hint": "マイクに向かって話してください",
		"notify_reply":          "AIの応答",
		"notify_empty":          "音声を認識できませんでした",
		"notify_empty_hint":     "もう一度お試しください",
		"notify_error":          "エラー",
		"notify_ready":          "Taiwa の準備ができました",

		// Окно диалога
		"btn_record":       "録音開始",
		"btn_stop":         "録音停止",
		"btn_send":         "送信",
		"btn_clear":        "履歴をクリア",
		"btn_copy":         "コピー",
		"label_transcript": "認識結果",
		"hint_transcript":  "録音するか、ここに入力してください",
		"label_reply":      "AIの応答",
		"label_history":    "会話履歴",
		"label_you":        "あなた",
		"label_ai":         "AI",
		"status_loading":   "処理中...",
		"status_empty":     "まだ会話はありません",

		// Диалоги
		"dialog_server_title":      "サーバー設定",
		"dialog_server_prompt":     "バックエンドのURL:",
		"dialog_hotkey_title_mods": "ホットキー設定 - 修飾キー",
		"dialog_hotkey_mods":       "修飾キーを選択してください:",
		"dialog_hotkey_title_key":  "ホットキー設定 - キー",
		"dialog_hotkey_key":        "キーを選択してください:",
		"dialog_hotkey_no_mods":    "修飾キーを少なくとも1つ選択してください",

		// Ошибки
		"error_recording":       "録音エラー",
		"error_encode":          "音声のエンコードに失敗しました",
		"error_transcribe":      "音声認識に失敗しました",
		"error_chat":            "チャットに失敗しました",
		"error_synthesize":      "音声合成に失敗しました",
		"error_play":            "再生に失敗しました",
		"error_busy":            "処理中です",
		"error_hotkey_register": "ホットキーを登録できませんでした",
		"error_clipboard":       "クリップボードへのコピーに失敗しました",
		"error_server_url":      "無効なサーバーURLです",
	},
	EN: {
		// Приложение
		"app_name":     "Taiwa",
		"app_tooltip":  "Taiwa - voice dialogue AI",
		"window_title": "Voice Dialogue AI",

		// Меню трея
		"tray_ready":              "Ready",
		"tray_recording":          "Recording...",
		"tray_processing":         "Processing...",
		"tray_open":               "Open window",
		"tray_open_hint":          "Show the conversation window",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show desktop notifications",
		"tray_server":             "Server...",
		"tray_server_hint":        "Change the backend address",
		"tray_hotkey":             "Hotkey...",
		"tray_hotkey_hint":        "Change the record start/stop key",
		"tray_language":           "日本語",
		"tray_language_hint":      "インターフェースを日本語に切り替え",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close the application",

		// Уведомления
		"notify_recording":      "Recording...",
		"notify_recording_hint": "Speak into the microphone",
		"notify_reply":          "AI reply",
		"notify_empty":          "Could not recognize speech",
		"notify_empty_hint":     "Please try again",
		"notify_error":          "Error",
		"notify_ready":          "Taiwa is ready",

		// Окно диалога
		"btn_record":       "Record",
		"btn_stop":         "Stop",
		"btn_send":         "Send",
		"btn_clear":        "Clear history",
		"btn_copy":         "Copy",
		"label_transcript": "Transcript",
		"hint_transcript":  "Record, or type here",
		"label_reply":      "AI reply",
		"label_history":    "Conversation",
		"label_you":        "You",
		"label_ai":         "AI",
		"status_loading":   "Processing...",
		"status_empty":     "No messages yet",

		// Диалоги
		"dialog_server_title":      "Server",
		"dialog_server_prompt":     "Backend URL:",
		"dialog_hotkey_title_mods": "Hotkey - Modifiers",
		"dialog_hotkey_mods":       "Select modifiers:",
		"dialog_hotkey_title_key":  "Hotkey - Key",
		"dialog_hotkey_key":        "Select key:",
		"dialog_hotkey_no_mods":    "Select at least one modifier",

		// Ошибки
		"error_recording":       "Recording error",
		"error_encode":          "Could not encode audio",
		"error_transcribe":      "Transcription failed",
		"error_chat":            "Chat failed",
		"error_synthesize":      "Speech synthesis failed",
		"error_play":            "Playback failed",
		"error_busy":            "Still processing",
		"error_hotkey_register": "Could not register hotkey",
		"error_clipboard":       "Clipboard copy error",
		"error_server_url":      "Invalid server URL",
	},
}

// T возвращает перевод для ключа.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Иначе возвращаем сам ключ
	return key
}

// SetLanguage устанавливает язык интерфейса.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage возвращает язык интерфейса.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Parse переводит значение из конфига в поддерживаемый язык, по умолчанию JA.
func Parse(s string) Language {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := translations[lang]; ok {
		return lang
	}
	return JA
}

// AvailableLanguages возвращает список поддерживаемых языков.
func AvailableLanguages() []Language {
	return []Language{JA, EN}
}

// LanguageName возвращает отображаемое имя языка.
func LanguageName(lang Language) string {
	switch lang {
	case JA:
		return "日本語"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
