package entity

// LabelTable упорядоченный список имён меток модели.
// Индекс в таблице совпадает со значением в сетке меток.
type LabelTable struct {
	names []string
	index map[string]int
}

// NewLabelTable создаёт таблицу меток. Срез копируется, таблица неизменяема.
func NewLabelTable(names []string) *LabelTable {
	t := &LabelTable{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(t.names, names)
	for i, name := range t.names {
		// при дублях побеждает первый индекс
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}
	return t
}

// Len возвращает количество меток.
func (t *LabelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Name возвращает имя метки по индексу.
func (t *LabelTable) Name(i int) (string, bool) {
	if t == nil || i < 0 || i >= len(t.names) {
		return "", false
	}
	return t.names[i], true
}

// Contains сообщает, есть ли метка с таким именем.
func (t *LabelTable) Contains(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}
