// Package core provides the reconciliation and analysis engine.
//
// # Error Codes Reference
//
// This file defines the bilingual user messages. Every error that reaches
// the HTTP boundary is mapped to a UserMessage carrying a support code, an
// HTTP status and the message in both report languages (Russian and Uzbek).
//
// # Input Errors (IN001-IN099)
//
//	IN001 - Unsupported format: file is not a spreadsheet or text file
//	IN002 - Column not found: the required column is missing
//	IN003 - Empty input: one of the files has no values to compare
//	IN004 - Insufficient files: a merge needs at least two files
//	IN005 - No columns: no column names were given for a merge
//	IN006 - Invalid side: difference download must name file1 or file2
//	IN007 - No data: download request carried no result payload
//	IN008 - No file: no file was selected
//	IN009 - File too large: upload exceeds the configured limit
//	IN010 - Too many files: a merge exceeds the configured file count
//
// # Report Errors (REP001-REP099)
//
//	REP001 - Report not found: unknown report id
//	REP002 - Storage failure: the report store failed (retried once)
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Busy: too many files are being processed
//	REQ002 - Cancelled: the request was cancelled
//	REQ003 - Timeout: the request timed out
//	REQ004 - Rate limited: too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application logs for the
// technical error.
package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UserMessage provides user-facing error information in both languages.
type UserMessage struct {
	Code      string
	MessageRU string
	MessageUZ string
	Status    int
}

// Message returns the text for the given language.
func (m UserMessage) Message(lang Language) string {
	if lang == LangUZ {
		return m.MessageUZ
	}
	return m.MessageRU
}

// sentinelMessages maps the error taxonomy to user messages. Matched with
// errors.Is, in order.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrUnsupportedFormat, UserMessage{"IN001",
		"Неподдерживаемый формат файла. Разрешены Excel (.xlsx), CSV и TXT",
		"Fayl formati qo'llab-quvvatlanmaydi. Excel (.xlsx), CSV va TXT ruxsat etiladi",
		http.StatusBadRequest}},
	{ErrColumnNotFound, UserMessage{"IN002",
		"Нужный столбец не найден в файле",
		"Kerakli ustun faylda topilmadi",
		http.StatusBadRequest}},
	{ErrEmptyInput, UserMessage{"IN003",
		"Файл не содержит данных для сравнения",
		"Faylda solishtirish uchun ma'lumot yo'q",
		http.StatusBadRequest}},
	{ErrInsufficientFiles, UserMessage{"IN004",
		"Необходимо загрузить минимум 2 файла",
		"Kamida 2 ta fayl yuklash kerak",
		http.StatusBadRequest}},
	{ErrNoColumnsSpecified, UserMessage{"IN005",
		"Укажите хотя бы одно название столбца",
		"Kamida bitta ustun nomini kiriting",
		http.StatusBadRequest}},
	{ErrInvalidSide, UserMessage{"IN006",
		"Укажите file1 или file2",
		"file1 yoki file2 ni ko'rsating",
		http.StatusBadRequest}},
	{ErrNoData, UserMessage{"IN007",
		"Нет данных для экспорта",
		"Eksport uchun ma'lumot yo'q",
		http.StatusBadRequest}},
	{ErrReportNotFound, UserMessage{"REP001",
		"Отчет не найден",
		"Hisobot topilmadi",
		http.StatusNotFound}},
	{ErrPersistence, UserMessage{"REP002",
		"Ошибка хранилища отчетов",
		"Hisobotlar omborida xatolik",
		http.StatusInternalServerError}},
	{ErrTooManyJobs, UserMessage{"REQ001",
		"Сервер занят обработкой других файлов, попробуйте позже",
		"Server boshqa fayllar bilan band, keyinroq urinib ko'ring",
		http.StatusServiceUnavailable}},
}

// errorPatterns catches errors that arrive without a sentinel in their
// chain (transport and context errors). Matched case-insensitively with
// strings.Contains; first match wins.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"no file provided", UserMessage{"IN008",
		"Файл не выбран",
		"Fayl tanlanmagan",
		http.StatusBadRequest}},
	{"file too large", UserMessage{"IN009",
		"Файл превышает допустимый размер",
		"Fayl ruxsat etilgan hajmdan katta",
		http.StatusRequestEntityTooLarge}},
	{"too many files", UserMessage{"IN010",
		"Слишком много файлов в одном запросе",
		"Bitta so'rovda fayllar juda ko'p",
		http.StatusBadRequest}},
	{"context canceled", UserMessage{"REQ002",
		"Запрос был отменен",
		"So'rov bekor qilindi",
		http.StatusBadRequest}},
	{"context deadline exceeded", UserMessage{"REQ003",
		"Время запроса истекло",
		"So'rov vaqti tugadi",
		http.StatusGatewayTimeout}},
	{"rate limit", UserMessage{"REQ004",
		"Слишком много запросов",
		"So'rovlar juda ko'p",
		http.StatusTooManyRequests}},
}

var defaultMessage = UserMessage{
	Code:      "ERR000",
	MessageRU: "Произошла непредвиденная ошибка",
	MessageUZ: "Kutilmagan xatolik yuz berdi",
	Status:    http.StatusInternalServerError,
}

// MapError converts an error to a bilingual user message. Sentinels are
// matched first, then string patterns, then the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX)" in the given language.
func FormatUserError(err error, lang Language) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s)", msg.Message(lang), msg.Code)
}
