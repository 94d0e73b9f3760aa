// Package integrity реализует ядро проверки целостности документов:
// вычисление SHA-256 дайджеста содержимого, построение записей
// хеш-цепочки и сквозную проверку цепочки.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// RootHash - сентинел previous_hash для первой записи пустой цепочки.
const RootHash = "0"

// HashReader вычисляет SHA-256 дайджест содержимого reader за один проход.
// Возвращает дайджест в виде hex-строки фиксированной длины.
// Ошибка чтения источника возвращается вызывающему, а не глотается.
func HashReader(reader io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("ошибка чтения содержимого при хешировании: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashBytes вычисляет SHA-256 дайджест байтового среза.
// Детерминирован: одинаковые байты всегда дают одинаковый дайджест.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
