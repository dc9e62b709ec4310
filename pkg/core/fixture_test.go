package core

import (
	"sync"
	"testing"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testActor model.ID = "alice"

var (
	repoAddr      = model.RepositoryAddress("repo1")
	phonebookAddr = model.ModelAddress("repo1", "phonebook")
	johnAddr      = phonebookAddr.Child("john")
	peterAddr     = phonebookAddr.Child("peter")
	phoneAddr     = johnAddr.Child("phone")
)

func testRepository(t testing.TB, opts ...RepositoryOption) *Repository {
	r, err := NewRepository("repo1", append([]RepositoryOption{Logger(zap.NewNop())}, opts...)...)
	require.NoError(t, err)
	return r
}

// phonebook builds a model at revision 4:
//
//	r0: model created
//	r1: object john
//	r2: field john/phone
//	r3: john/phone = "555-1234"
//	r4: object peter
func phonebook(t testing.TB, opts ...RepositoryOption) (*Repository, *Model) {
	r := testRepository(t, opts...)
	m, err := r.CreateModel(testActor, "phonebook")
	require.NoError(t, err)
	john, err := m.CreateObject(testActor, "john")
	require.NoError(t, err)
	_, err = john.CreateField(testActor, "phone")
	require.NoError(t, err)
	rev, err := john.SetValue(testActor, "phone", model.String("555-1234"))
	require.NoError(t, err)
	require.Equal(t, int64(3), rev)
	_, err = m.CreateObject(testActor, "peter")
	require.NoError(t, err)
	require.Equal(t, int64(4), m.Revision())
	return r, m
}

type recorder struct {
	mx     sync.Mutex
	events []event.Event
	trace  *[]string
}

func (r *recorder) OnEvent(e event.Event) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.events = append(r.events, e)
	if r.trace != nil {
		*r.trace = append(*r.trace, "event")
	}
}

func (r *recorder) Events() []event.Event {
	r.mx.Lock()
	defer r.mx.Unlock()
	cp := make([]event.Event, len(r.events))
	copy(cp, r.events)
	return cp
}

func must[T command.Command](c T, err error) T {
	return command.Must(c, err)
}
