package gradesync

// Input is the single grade field being augmented.
type Input interface {
	Value() string
	// Set assigns the value and fires a change notification.
	Set(value string)
	// OnChange registers a listener for change notifications.
	OnChange(fn func(value string))
}

// Field is an in-memory Input.
type Field struct {
	value     string
	listeners []func(string)
}

func NewField(value string) *Field {
	return &Field{value: value}
}

func (f *Field) Value() string {
	return f.value
}

func (f *Field) Set(value string) {
	f.value = value
	for _, fn := range f.listeners {
		fn(value)
	}
}

func (f *Field) OnChange(fn func(value string)) {
	f.listeners = append(f.listeners, fn)
}
