package benchmark

// scbContentsCodes maps SCB ContentsCode headers of a raw export to internal names.
var scbContentsCodes = map[string]string{
	"0000028K": ColAntalForetag,
	"0000032G": ColRorelsemarginalPct,
	"0000032H": ColNettomarginalPct,
	"0000033Z": ColPersonalkostnadNetto,
	"00000355": ColPersonalkostnadPerAnst,
}

// legacyColumns are copied into the target column only when the target is missing.
var legacyColumns = []struct{ from, to string }{
	{"Storleksklass", ColSizeClass},
	{"Tid", ColYear},
}

// harmonize renames raw columns, applies the legacy fallbacks and checks
// the required schema.
func harmonize(f *frame) error {
	f.rename(scbContentsCodes)
	for _, l := range legacyColumns {
		f.copyColumn(l.from, l.to)
	}

	var missing []string
	for _, c := range RequiredColumns {
		if !f.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing, Present: f.columnNames()}
	}
	return nil
}

// NormalizeSizeClass applies the SCB size-class alias: "001" is class "0".
func NormalizeSizeClass(s string) string {
	if s == "001" {
		return "0"
	}
	return s
}

// normalize converts a harmonized frame into typed rows. Key cells are kept
// verbatim, so a padded " 432" never matches "432". Unparseable numeric
// cells become null; no row is dropped.
func normalize(f *frame) []Row {
	var (
		year   = f.col(ColYear)
		sni    = f.col(ColSNI3)
		size   = f.col(ColSizeClass)
		antal  = f.col(ColAntalForetag)
		opm    = f.col(ColRorelsemarginalPct)
		npm    = f.col(ColNettomarginalPct)
		staff  = f.col(ColPersonalkostnadNetto)
		perEmp = f.col(ColPersonalkostnadPerAnst)
	)

	rows := make([]Row, 0, len(f.records))
	for _, rec := range f.records {
		rows = append(rows, Row{
			Year:                   rec[year],
			SNI3:                   rec[sni],
			SizeClass:              NormalizeSizeClass(rec[size]),
			AntalForetag:           ParseOptionalNumber(rec[antal]),
			RorelsemarginalPct:     ParseOptionalNumber(rec[opm]),
			NettomarginalPct:       ParseOptionalNumber(rec[npm]),
			PersonalkostnadNetto:   ParseOptionalNumber(rec[staff]),
			PersonalkostnadPerAnst: ParseOptionalNumber(rec[perEmp]),
		})
	}
	return rows
}
