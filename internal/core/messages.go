package core

import "github.com/inovacc/patientdesk/internal/model"

// Msg is an input to a component's Update.
type Msg interface {
	isMsg()
}

// Effect is a backend operation a component asks the coordinator to run.
type Effect interface {
	isEffect()
}

// Editor messages.
type (
	// LoadRecord puts a copy of Patient into the editor, or clears it to
	// create mode when Patient is nil.
	LoadRecord struct{ Patient *model.Patient }

	ChangeField struct {
		Field model.Field
		Value string
	}

	SubmitForm struct{}
	ResetForm  struct{}
)

// List messages.
type (
	Reload    struct{}
	SetFilter struct{ Term string }
	GoToPage  struct{ Index int }
	NextPage  struct{}
	PrevPage  struct{}
	SetSort   struct{ Sort Sort }

	ViewRecord struct{ ID int64 }
	CloseView  struct{}

	BeginEdit struct{ ID int64 }
	EditField struct {
		Field model.Field
		Value string
	}
	SaveEdit   struct{}
	CancelEdit struct{}

	RequestDelete struct{ ID int64 }
	ConfirmDelete struct{ Yes bool }

	// EditInForm loads a visible row into the record editor.
	EditInForm struct{ ID int64 }
)

// Results of effects, fed back through Update.
type (
	Loaded struct {
		Token   uint64
		Records []model.Patient
	}

	PageLoaded struct {
		Token uint64
		Page  Page
	}

	Created struct{ Patient model.Patient }
	Updated struct{ Patient model.Patient }
	Deleted struct{ ID int64 }

	// Failed reports an effect error. Token is set for list fetches.
	Failed struct {
		Op    Op
		ID    int64
		Token uint64
		Err   error
	}
)

// Effects.
type (
	FetchAll     struct{ Token uint64 }
	FetchPage    struct{ Request PageRequest }
	CreateRecord struct{ Patient model.Patient }
	UpdateRecord struct{ Patient model.Patient }
	DeleteRecord struct{ ID int64 }
)

func (LoadRecord) isMsg()    {}
func (ChangeField) isMsg()   {}
func (SubmitForm) isMsg()    {}
func (ResetForm) isMsg()     {}
func (Reload) isMsg()        {}
func (SetFilter) isMsg()     {}
func (GoToPage) isMsg()      {}
func (NextPage) isMsg()      {}
func (PrevPage) isMsg()      {}
func (SetSort) isMsg()       {}
func (ViewRecord) isMsg()    {}
func (CloseView) isMsg()     {}
func (BeginEdit) isMsg()     {}
func (EditField) isMsg()     {}
func (SaveEdit) isMsg()      {}
func (CancelEdit) isMsg()    {}
func (RequestDelete) isMsg() {}
func (ConfirmDelete) isMsg() {}
func (EditInForm) isMsg()    {}
func (Loaded) isMsg()        {}
func (PageLoaded) isMsg()    {}
func (Created) isMsg()       {}
func (Updated) isMsg()       {}
func (Deleted) isMsg()       {}
func (Failed) isMsg()        {}

func (FetchAll) isEffect()     {}
func (FetchPage) isEffect()    {}
func (CreateRecord) isEffect() {}
func (UpdateRecord) isEffect() {}
func (DeleteRecord) isEffect() {}
