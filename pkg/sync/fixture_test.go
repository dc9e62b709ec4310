package sync

import (
	"testing"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	phonebookAddr = model.ModelAddress("repo1", "phonebook")
	johnAddr      = phonebookAddr.Child("john")
	peterAddr     = phonebookAddr.Child("peter")
	phoneAddr     = johnAddr.Child("phone")
)

type replicas struct {
	remote *core.Model
	store  *core.Store
	local  *core.Model
	sync   *Synchronizer
}

// newReplicas builds a remote phonebook at revision 5 and a local replica of it:
//
//	r0: model created
//	r1: object john
//	r2: field john/phone
//	r3: john/phone = "555-1234"
//	r4: object peter
//	r5: john/phone = "555-0000"
func newReplicas(t testing.TB, opts ...Option) *replicas {
	remoteRepo, err := core.NewRepository("repo1", core.Logger(zap.NewNop()))
	require.NoError(t, err)
	remote, err := remoteRepo.CreateModel("remote", "phonebook")
	require.NoError(t, err)
	john, err := remote.CreateObject("remote", "john")
	require.NoError(t, err)
	_, err = john.CreateField("remote", "phone")
	require.NoError(t, err)
	_, err = john.SetValue("remote", "phone", model.String("555-1234"))
	require.NoError(t, err)
	_, err = remote.CreateObject("remote", "peter")
	require.NoError(t, err)
	_, err = john.SetValue("remote", "phone", model.String("555-0000"))
	require.NoError(t, err)
	require.Equal(t, int64(5), remote.Revision())

	localRepo, err := core.NewRepository("repo1", core.Logger(zap.NewNop()))
	require.NoError(t, err)
	_, err = localRepo.ReplayAll(remote.ChangeLog().Since(model.RevisionNotSet))
	require.NoError(t, err)
	local := localRepo.GetModel("phonebook")
	require.NotNil(t, local)

	return &replicas{
		remote: remote,
		store:  core.NewStore(remoteRepo),
		local:  local,
		sync:   New(local, append([]Option{Logger(zap.NewNop())}, opts...)...),
	}
}

func must[T command.Command](c T, err error) T {
	return command.Must(c, err)
}
