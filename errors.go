package gomp4

import "fmt"

// TruncatedError indicates the input ended where more bytes were declared.
type TruncatedError struct {
	Offset int64
}

func (e TruncatedError) Error() string {
	return fmt.Sprintf("truncated input at offset %d", e.Offset)
}

// OverrunError indicates a box whose declared size does not fit the
// remaining enclosing scope.
type OverrunError struct {
	Tag    string
	Offset int64
}

func (e OverrunError) Error() string {
	return fmt.Sprintf("box %q at offset %d overruns its scope", e.Tag, e.Offset)
}

// RequiredBoxError indicates a box that must appear exactly once was
// missing or duplicated.
type RequiredBoxError struct {
	Tag   string
	Count int
}

func (e RequiredBoxError) Error() string {
	return fmt.Sprintf("box %q appears %d times, want exactly 1", e.Tag, e.Count)
}

// DuplicateTrackIDError indicates two tracks share an id, or an id of zero.
type DuplicateTrackIDError struct {
	ID uint32
}

func (e DuplicateTrackIDError) Error() string {
	return fmt.Sprintf("invalid or duplicate track id %d", e.ID)
}

// InconsistentTableError indicates the sample tables of one track
// disagree with each other. Other tracks stay queryable.
type InconsistentTableError struct {
	TrackID uint32
	Reason  string
}

func (e InconsistentTableError) Error() string {
	return fmt.Sprintf("track %d: inconsistent sample tables: %s", e.TrackID, e.Reason)
}

// IndexOutOfRangeError indicates a sample query outside 1..Count.
type IndexOutOfRangeError struct {
	Index uint32
	Count uint32
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("sample %d out of range 1..%d", e.Index, e.Count)
}

// SizeOverflowError indicates a box too large even for the 64-bit
// header form.
type SizeOverflowError struct {
	Tag string
}

func (e SizeOverflowError) Error() string {
	return fmt.Sprintf("box %q exceeds the 64-bit size limit", e.Tag)
}
