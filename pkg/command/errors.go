package command

import (
	"strconv"

	"github.com/oneconcern/strata/pkg/command/status"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
)

// ErrInvalidRevisionf reports an invalid expected revision
func ErrInvalidRevisionf(rev int64) *errors.Error {
	return status.ErrInvalidRevision.WrapMessage(strconv.FormatInt(rev, 10))
}

func errInvalidTarget(expected model.AddressKind, target model.Address) *errors.Error {
	return status.ErrInvalidTarget.WrapMessage("expected " + expected.String() + " address, got " + target.String())
}
