// Package cli provides the terminal user interface of patientdesk.
//
// The package uses [Bubbletea] for the event loop and [Lipgloss] for
// styling. Components follow the Bubbletea Model-View-Update architecture:
//   - PatientsModel: the patient table with search, paging, sorting,
//     inline row editing, delete confirmation, a detail view and the record
//     editor form.
//   - ConfigureModel: the settings form behind "patientdesk configure".
//
// PatientsModel holds no patient state of its own. Key presses become
// core messages applied through a core.Coordinator, and the effects it
// returns run as tea.Cmds whose results come back as messages. The widgets
// are refreshed from the coordinator after every message.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
