package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Line shapes of an Alpha Progression export.
var (
	// "Push · Day 1";"2026-02-17 5:04 h";"1:12 hr"
	sessionLine = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)
	// "1. Bench Press · Barbell · 6 reps[· modifiers]"[;"WU1 · 22,5 kg · 10 reps<br>..."]
	exerciseLine = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)
	// 1;102,5;6;0   (RIR may be blank or "-" when untracked)
	setLine = regexp.MustCompile(`^(\d+);([^;]+);(\d+);([^;]*)$`)
	// WU1 · 37,5 kg · 9 reps
	warmupPart = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)
)

const columnHeader = "#;KG;REPS;RIR"

// parser accumulates sessions line by line.
type parser struct {
	sessions []models.AlphaSession
	session  *models.AlphaSession
	exercise *models.AlphaExercise
}

// Parse reads an Alpha Progression CSV export. Sessions are separated by
// blank lines; unrecognized lines are ignored.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	var p parser
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := p.line(strings.TrimSpace(sc.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.endSession()
	return p.sessions, nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.endSession()
	case line == columnHeader:
	case sessionLine.MatchString(line):
		m := sessionLine.FindStringSubmatch(line)
		p.endSession()
		date, err := parseSessionDate(m[2])
		if err != nil {
			return err
		}
		p.session = &models.AlphaSession{Name: m[1], Date: date, Duration: m[3]}
	case exerciseLine.MatchString(line):
		if p.session == nil {
			return fmt.Errorf("exercise outside a session: %q", line)
		}
		m := exerciseLine.FindStringSubmatch(line)
		p.endExercise()
		num, _ := strconv.Atoi(m[1])
		target, _ := strconv.Atoi(m[4])
		p.exercise = &models.AlphaExercise{
			Number:     num,
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: target,
			Sets:       parseWarmups(m[6]),
		}
	case setLine.MatchString(line):
		if p.exercise == nil {
			return fmt.Errorf("set outside an exercise: %q", line)
		}
		m := setLine.FindStringSubmatch(line)
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		p.exercise.Sets = append(p.exercise.Sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			RIR:              parseRIR(m[4]),
		})
	}
	return nil
}

func (p *parser) endExercise() {
	if p.exercise != nil && p.session != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) endSession() {
	p.endExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

// parseSessionDate accepts single- and double-digit hours.
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse session date %q", s)
}

// parseWarmups reads the "<br>"-separated warm-up list of an exercise header.
func parseWarmups(s string) []models.AlphaSet {
	if s == "" {
		return nil
	}
	var sets []models.AlphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := warmupPart.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			RIR:              -1,
			IsWarmup:         true,
		})
	}
	return sets
}

// parseWeight reads a decimal-comma load. A leading "+" marks load added to
// bodyweight: "+35" is (35, true).
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseDecimalComma(rest), true
	}
	return parseDecimalComma(s), false
}

// parseRIR returns -1 for an untracked value.
func parseRIR(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return -1
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return -1
	}
	return v
}

// parseDecimalComma reads "102,5" as 102.5. Unparseable input is 0.
func parseDecimalComma(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}
