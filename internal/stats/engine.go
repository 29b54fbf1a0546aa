package stats

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/encoding/unicode"

	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/notifications"
	"github.com/dckiller51/trueachievements/internal/textutil"
)

// Export column names after quote stripping. The vendor has renamed the URL
// column between releases, so both spellings are consulted.
const (
	colGameName    = "Game name"
	colPlatform    = "Platform"
	colGamerscore  = "GamerScore Won (incl. DLC)"
	colTAScore     = "TrueAchievement Won (incl. DLC)"
	colAchieved    = "Achievements Won (incl. DLC)"
	colMaxAchieved = "Max Achievements (incl. DLC)"
	colHoursPlayed = "Hours Played"
	colCompletion  = "My Completion Percentage"
	colRatio       = "My Ratio"
	colGameURL     = "Game URL"
	colURL         = "URL"
	colWalkthrough = "Walkthrough"
)

// Engine computes snapshots from the cached export file. It owns the set of
// lookup names already reported as unmatched so each distinct game alerts at
// most once per process.
type Engine struct {
	logger   *slog.Logger
	notifier notifications.Service

	mu        sync.Mutex
	signalled map[string]struct{}
}

// NewEngine builds an engine. A nil notifier disables unmatched-game alerts.
func NewEngine(logger *slog.Logger, notifier notifications.Service) *Engine {
	return &Engine{
		logger:    logging.NewComponentLogger(logger, "stats"),
		notifier:  notifier,
		signalled: make(map[string]struct{}),
	}
}

// ComputeSnapshot parses the export at filePath into aggregate totals and,
// when lookupName matches a row, a current-game detail. An absent or
// unreadable file is a normal "never downloaded yet" state and yields a zeroed
// snapshot; parse failures are logged and degrade the same way. The method
// never returns an error to its caller.
func (e *Engine) ComputeSnapshot(ctx context.Context, filePath, lookupName string, exclusions []string) (Snapshot, *CurrentGame) {
	file, err := os.Open(filePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("export unreadable, serving zeroed snapshot",
				logging.String("path", filePath),
				logging.Error(err),
			)
		}
		return Snapshot{}, nil
	}
	defer file.Close()

	snapshot, detail, err := e.parse(file, lookupName, exclusions)
	if err != nil {
		logging.ErrorWithContext(e.logger, "export parse failed, serving zeroed snapshot", "export_parse_failed",
			logging.String("path", filePath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "statistics reset to zero until the next valid download"),
		)
		return Snapshot{}, nil
	}

	if lookupName != "" && detail == nil && !nameExcluded(lookupName, exclusions) {
		e.signalUnmatched(ctx, lookupName)
	}
	return snapshot, detail
}

func (e *Engine) parse(r io.Reader, lookupName string, exclusions []string) (Snapshot, *CurrentGame, error) {
	reader := csv.NewReader(bufio.NewReader(unicode.UTF8BOM.NewDecoder().Reader(r)))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Snapshot{}, nil, nil
		}
		return Snapshot{}, nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[textutil.StripQuotes(name)] = i
	}

	var (
		totalGS, totalTA, totalAch, maxAch int
		started, completed                 int
		detail                             *CurrentGame
	)
	lookup := textutil.NormalizeName(lookupName)

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Snapshot{}, nil, err
		}

		cell := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return textutil.StripQuotes(record[idx])
		}

		name := cell(colGameName)
		if name == "" {
			continue
		}
		platform := cell(colPlatform)
		if rowExcluded(name, platform, exclusions) {
			e.logger.Debug("export row excluded",
				logging.String(logging.FieldGame, name),
				logging.String("platform", platform),
			)
			continue
		}

		gsWon := coerceInt(cell(colGamerscore))
		taWon := coerceInt(cell(colTAScore))
		achWon := coerceInt(cell(colAchieved))
		achMax := coerceInt(cell(colMaxAchieved))

		// Zero-progress rows still qualify for the current-game match.
		if detail == nil && lookup != "" && lookup == textutil.NormalizeName(name) {
			detail = buildDetail(name, platform, achWon, achMax, gsWon, taWon, cell)
		}

		if achWon > 0 {
			totalGS += gsWon
			totalTA += taWon
			totalAch += achWon
			maxAch += achMax
			started++
			if achWon >= achMax && achMax > 0 {
				completed++
			}
		}
	}

	snapshot := Snapshot{
		Gamerscore:        totalGS,
		TAScore:           totalTA,
		TotalGames:        started,
		CompletedGames:    completed,
		TotalAchievements: totalAch,
		CompletionPct:     completionPct(totalAch, maxAch),
	}
	return snapshot, detail, nil
}

func buildDetail(name, platform string, achWon, achMax, gsWon, taWon int, cell func(string) string) *CurrentGame {
	hours := cell(colHoursPlayed)
	if hours == "" {
		hours = "0"
	}
	completion := cell(colCompletion)
	if completion == "" {
		completion = "0"
	}
	ratio := cell(colRatio)
	if ratio == "" {
		ratio = "1.00"
	}
	gameURL := cell(colGameURL)
	if gameURL == "" {
		gameURL = cell(colURL)
	}
	if gameURL == "" {
		gameURL = "N/A"
	}
	walkthrough := cell(colWalkthrough)
	if !strings.HasPrefix(walkthrough, "http") {
		walkthrough = ""
	}
	return &CurrentGame{
		Name:           name,
		Platform:       platform,
		Achievements:   strconv.Itoa(achWon) + " / " + strconv.Itoa(achMax),
		Gamerscore:     strconv.Itoa(gsWon) + " G",
		TAScore:        strconv.Itoa(taWon) + " TA",
		HoursPlayed:    hours + " h",
		Completion:     completion + "%",
		Ratio:          ratio,
		URL:            gameURL,
		WalkthroughURL: walkthrough,
	}
}

func rowExcluded(name, platform string, exclusions []string) bool {
	if strings.Contains(strings.ToLower(platform), "app") {
		return true
	}
	return nameExcluded(name, exclusions)
}

func nameExcluded(name string, exclusions []string) bool {
	lowered := strings.ToLower(name)
	for _, term := range exclusions {
		if term != "" && strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// coerceInt strips every non-digit character and parses the remainder as a
// non-negative integer. Empty remainders and parse failures coerce to 0.
func coerceInt(value string) int {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// completionPct stays in [0,100]. Rows without a published max contribute
// achievements to the numerator only, which could otherwise push the
// aggregate past 100.
func completionPct(achieved, max int) float64 {
	if max <= 0 {
		return 0
	}
	pct := math.Round(float64(achieved)/float64(max)*100*100) / 100
	if pct > 100 {
		return 100
	}
	return pct
}

// signalUnmatched publishes the one-time "unknown game" alert for a lookup
// name no export row matched. The name is recorded first so a failed publish
// still counts as the one attempt for this process.
func (e *Engine) signalUnmatched(ctx context.Context, lookupName string) {
	e.mu.Lock()
	if _, seen := e.signalled[lookupName]; seen {
		e.mu.Unlock()
		return
	}
	e.signalled[lookupName] = struct{}{}
	e.mu.Unlock()

	logging.WarnWithContext(e.logger, "now-playing game has no export row", "game_unmatched",
		logging.String(logging.FieldGame, lookupName),
		logging.String(logging.FieldErrorHint, "add a nowplaying.renames entry for this title"),
		logging.String(logging.FieldImpact, "current-game detail unavailable"),
	)
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Publish(ctx, notifications.EventUnmatchedGame, notifications.Payload{"game": lookupName}); err != nil {
		e.logger.Warn("unmatched-game notification failed", logging.Error(err))
	}
}
