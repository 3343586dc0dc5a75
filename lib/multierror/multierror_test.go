package multierror_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/enfabrica/kunzip/lib/multierror"
	"github.com/stretchr/testify/assert"
)

var (
	OneErr   = errors.New("err one")
	TwoErr   = errors.New("err two")
	ThreeErr = errors.New("err three")
	FourErr  = errors.New("err four")
)

type nameError struct {
	name string
}

func (e nameError) Error() string {
	return fmt.Sprintf("entry %s could not be extracted", e.name)
}

func TestEmpty(t *testing.T) {
	assert.Nil(t, multierror.New(nil))
	assert.Nil(t, multierror.Wrap(nil, nil))
	assert.Equal(t, OneErr, multierror.Wrap(nil, OneErr))
	assert.Equal(t, TwoErr, multierror.NewOr(nil, TwoErr))
	assert.Nil(t, multierror.Errors(nil))
	assert.Equal(t, []error{OneErr}, multierror.Errors(OneErr))
}

func TestSanityIsError(t *testing.T) {
	err := multierror.Wrap(OneErr, ThreeErr, nil, FourErr)
	assert.True(t, errors.Is(err, OneErr))
	assert.False(t, errors.Is(err, TwoErr))
	assert.True(t, errors.Is(err, ThreeErr))
	assert.True(t, errors.Is(err, FourErr))
	realErrStrings := []string{OneErr.Error(), ThreeErr.Error(), FourErr.Error()}
	assert.Equal(t, strings.Join(realErrStrings, multierror.Separator), err.Error())
	assert.Len(t, multierror.Errors(err), 3)
}

func TestSanityAsError(t *testing.T) {
	first := &nameError{name: "docs/a.txt"}
	second := &nameError{name: "docs/b.txt"}
	err := multierror.Wrap(OneErr, first, second)

	var target *nameError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, first, target)
}

func TestNestedMultiErr(t *testing.T) {
	tErr := &nameError{name: "nested"}
	m := multierror.Wrap(OneErr, tErr)
	for i := 0; i < 100; i++ {
		m = multierror.Wrap(ThreeErr, FourErr, m)
	}
	var testNameErr *nameError
	assert.True(t, errors.As(m, &testNameErr))
	assert.Equal(t, tErr.Error(), testNameErr.Error())
	assert.True(t, errors.Is(m, OneErr))
	assert.False(t, errors.Is(m, TwoErr))
}

func TestWrapped(t *testing.T) {
	err := fmt.Errorf("extraction failed: %w", multierror.Wrap(OneErr, TwoErr))
	assert.True(t, errors.Is(err, TwoErr))
	assert.Equal(t, []error{OneErr, TwoErr}, multierror.Errors(err))
}
