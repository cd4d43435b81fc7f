package runs

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		performer   sql.NullString
		outputPath  sql.NullString
		recipient   sql.NullString
		status      string
		errorKind   sql.NullString
		errorMsg    sql.NullString
		durationMS  int64
		createdRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Origin,
		&run.Mode,
		&performer,
		&run.Count,
		&run.TrimSeconds,
		&outputPath,
		&recipient,
		&status,
		&errorKind,
		&errorMsg,
		&run.Clips,
		&run.Skipped,
		&durationMS,
		&createdRaw,
		&finishedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.Performer = performer.String
	run.OutputPath = outputPath.String
	run.Recipient = recipient.String
	run.Status = Status(status)
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMsg.String
	run.Duration = time.Duration(durationMS) * time.Millisecond

	created, err := parseTimeString(createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = created
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
