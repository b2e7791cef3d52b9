package utils

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// TokenReader walks a whitespace separated text stream, one word at a time.
// Mesh, field and index files are all written as word streams so that line
// length never limits the size of a boundary group or an index log.
type TokenReader struct {
	sc   *bufio.Scanner
	word int
	peek *string
}

func NewTokenReader(r io.Reader) (tr *TokenReader) {
	tr = &TokenReader{sc: bufio.NewScanner(r)}
	tr.sc.Buffer(make([]byte, 64*1024), 1<<20)
	tr.sc.Split(bufio.ScanWords)
	return
}

// Next returns the next word, io.EOF once the stream is exhausted
func (tr *TokenReader) Next() (tok string, err error) {
	if tr.peek != nil {
		tok, tr.peek = *tr.peek, nil
		tr.word++
		return
	}
	if !tr.sc.Scan() {
		if err = tr.sc.Err(); err == nil {
			err = io.EOF
		}
		return
	}
	tr.word++
	return tr.sc.Text(), nil
}

// Peek returns the next word without consuming it
func (tr *TokenReader) Peek() (tok string, err error) {
	if tr.peek != nil {
		return *tr.peek, nil
	}
	if tok, err = tr.Next(); err != nil {
		return
	}
	tr.word--
	tr.peek = &tok
	return
}

// Expect consumes the next word and fails unless it equals want
func (tr *TokenReader) Expect(want string) (err error) {
	var tok string
	if tok, err = tr.Next(); err != nil {
		return tr.wrap(fmt.Errorf("expected %q: %w", want, err))
	}
	if tok != want {
		return tr.wrap(fmt.Errorf("expected %q, got %q", want, tok))
	}
	return
}

func (tr *TokenReader) Int() (i int, err error) {
	var tok string
	if tok, err = tr.Next(); err != nil {
		return 0, tr.wrap(err)
	}
	if i, err = strconv.Atoi(tok); err != nil {
		return 0, tr.wrap(err)
	}
	return
}

func (tr *TokenReader) Float() (f float64, err error) {
	var tok string
	if tok, err = tr.Next(); err != nil {
		return 0, tr.wrap(err)
	}
	if f, err = strconv.ParseFloat(tok, 64); err != nil {
		return 0, tr.wrap(err)
	}
	return
}

// Ints reads a count followed by that many integers
func (tr *TokenReader) Ints() (I []int, err error) {
	var n int
	if n, err = tr.Int(); err != nil {
		return
	}
	if n < 0 {
		return nil, tr.wrap(fmt.Errorf("negative count %d", n))
	}
	I = make([]int, n)
	for i := range I {
		if I[i], err = tr.Int(); err != nil {
			return nil, err
		}
	}
	return
}

func (tr *TokenReader) wrap(err error) error {
	return fmt.Errorf("word %d: %w", tr.word, err)
}

// AppendInts appends "n i0 i1 ..." to a line buffer
func AppendInts(buf []byte, I []int) []byte {
	buf = strconv.AppendInt(buf, int64(len(I)), 10)
	for _, i := range I {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(i), 10)
	}
	return buf
}

// AppendFloat uses the shortest representation that parses back to the same bits
func AppendFloat(buf []byte, f float64) []byte {
	return strconv.AppendFloat(buf, f, 'g', -1, 64)
}
