package integrity

import (
	"github.com/medvault/server/internal/models"
)

// Причины нарушения целостности цепочки.
const (
	ChainReasonBadRoot       = "bad-root"        // Первая запись не ссылается на сентинел "0"
	ChainReasonBrokenLink    = "broken-link"     // previous_hash не совпадает с block_hash предыдущей записи
	ChainReasonTamperedBlock = "tampered-block"  // Хеш блока не воспроизводится из его полей
)

// ChainReport - результат сквозной проверки цепочки.
// При Valid == false BrokenIndex указывает первую нарушенную запись
// (индекс в упорядоченной по времени создания последовательности).
type ChainReport struct {
	Valid       bool   `json:"valid"`
	Length      int    `json:"length"`
	BrokenIndex int    `json:"broken_index"` // -1, если цепочка цела
	Reason      string `json:"reason,omitempty"`
}

// VerifyChain проверяет всю цепочку записей, упорядоченных по времени создания:
// для каждой записи повторно выводит хеш блока из сохраненных полей и
// сверяет связь previous_hash -> block_hash предыдущей записи.
// Возвращает отчет с индексом первой нарушенной записи.
func VerifyChain(records []models.LinkageRecord) (*ChainReport, error) {
	report := &ChainReport{Valid: true, Length: len(records), BrokenIndex: -1}

	for i := range records {
		record := &records[i]

		// Хеш блока должен быть чистой функцией остальных полей записи
		expected, err := RecomputeBlockHash(record)
		if err != nil {
			return nil, err
		}
		if expected != record.BlockHash {
			report.Valid = false
			report.BrokenIndex = i
			report.Reason = ChainReasonTamperedBlock
			return report, nil
		}

		if i == 0 {
			if record.PreviousHash != RootHash {
				report.Valid = false
				report.BrokenIndex = 0
				report.Reason = ChainReasonBadRoot
				return report, nil
			}
			continue
		}

		if record.PreviousHash != records[i-1].BlockHash {
			report.Valid = false
			report.BrokenIndex = i
			report.Reason = ChainReasonBrokenLink
			return report, nil
		}
	}

	return report, nil
}
