package sqlq

/*
Configuration shared by statements that modify rows: insert, update and
delete. Embedded by value and initialized by each constructor.
*/
type upsert struct {
	table     string
	returning []string
}

func newUpsert(table string) upsert { return upsert{table: table} }

func (self *upsert) setReturning(fields []string) {
	if len(fields) == 0 {
		self.returning = nil
		return
	}
	self.returning = copyStrings(fields)
}

func (self *upsert) validate(while string) error {
	if self.table == `` {
		return ErrInvalidInput.while(while).becausef(`missing table name`)
	}
	return nil
}

func (self *upsert) appendReturning(bui *Bui) {
	if len(self.returning) > 0 {
		bui.Str(`RETURNING`)
		bui.Idents(self.returning, true)
	}
}
