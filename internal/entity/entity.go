// Package entity resolves company mentions across sheets to one canonical
// profile per real-world company.
package entity

import (
	"sort"

	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/label"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

// NoName labels placeholder profiles built from an empty name.
const NoName = "SIN_NOMBRE"

// Key derives an entity key: padded RUC, else alternate id, else the
// normalized name. Empty when all three are empty.
func Key(ruc, altID, name string) string {
	if r := coerce.PadRUC13(ruc); r != "" {
		return r
	}
	if a := label.Key(altID); a != "" {
		return a
	}
	return label.Name(name)
}

// Directory holds the profiles of one run. It is not safe for concurrent use.
type Directory struct {
	fields   types.Fields
	log      *logrus.Entry
	profiles map[string]*types.Profile
	aliases  map[string]string
	altIDs   map[string]string

	placeholders int
}

func New(fields types.Fields, log *logrus.Entry) *Directory {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Directory{
		fields:   fields,
		log:      log.WithField("component", "entity"),
		profiles: map[string]*types.Profile{},
		aliases:  map[string]string{},
		altIDs:   map[string]string{},
	}
}

// Add folds p into the directory. A profile already holding p's key keeps
// its set fields; p only fills the gaps. A name-only p folds into the
// profile its name already resolves to, and a RUC profile absorbs a
// name-only profile of the same name. Returns the stored profile, or nil
// when p carries no identity at all.
func (d *Directory) Add(p types.Profile) *types.Profile {
	p.RUC = coerce.PadRUC13(p.RUC)
	p.AltID = label.Key(p.AltID)
	p.Name = label.Name(p.Name)
	if p.Key == "" {
		p.Key = Key(p.RUC, p.AltID, p.Name)
		if p.RUC == "" && p.AltID == "" {
			if q, ok := d.profiles[d.alias(p.Name)]; ok && !q.Placeholder {
				p.Key = q.Key
			}
		}
	}
	if p.Key == "" {
		return nil
	}
	cur, ok := d.profiles[p.Key]
	if !ok {
		cp := p
		cur = &cp
		d.profiles[p.Key] = cur
		if p.RUC != "" {
			d.absorb(cur)
		}
	} else if cur.Placeholder && !p.Placeholder {
		// real data replaces placeholder defaults
		name := cur.Name
		*cur = p
		if cur.Name == "" {
			cur.Name = name
		}
	} else {
		cur.Merge(p)
	}
	d.learn(p.Name, cur.Key)
	if p.AltID != "" {
		if _, seen := d.altIDs[p.AltID]; !seen {
			d.altIDs[p.AltID] = cur.Key
		}
	}
	return cur
}

// alias is the key a name resolves to, trying the plain then the legal form.
func (d *Directory) alias(name string) string {
	for _, n := range []string{label.Name(name), label.LegalName(name)} {
		if k, ok := d.aliases[n]; ok && n != "" {
			return k
		}
	}
	return ""
}

// absorb folds a name-only profile sharing cur's name into cur and points
// its aliases at cur. Fields the older profile set are kept.
func (d *Directory) absorb(cur *types.Profile) {
	k := d.alias(cur.Name)
	old, ok := d.profiles[k]
	if !ok || k == cur.Key || old.RUC != "" || old.AltID != "" || old.Placeholder {
		return
	}
	merged := *old
	merged.Key, merged.RUC, merged.AltID = cur.Key, cur.RUC, cur.AltID
	merged.Merge(*cur)
	*cur = merged
	delete(d.profiles, k)
	for n, v := range d.aliases {
		if v == k {
			d.aliases[n] = cur.Key
		}
	}
	for a, v := range d.altIDs {
		if v == k {
			d.altIDs[a] = cur.Key
		}
	}
}

// learn maps both name forms to key unless they already point somewhere.
func (d *Directory) learn(name, key string) {
	for _, n := range []string{label.Name(name), label.LegalName(name)} {
		if n == "" {
			continue
		}
		if _, seen := d.aliases[n]; !seen {
			d.aliases[n] = key
		}
	}
}

// AddTable folds every identifiable row of t and returns how many rows
// contributed.
func (d *Directory) AddTable(t table.Table) int {
	f := d.fields
	n := 0
	for _, row := range t.Rows {
		p := types.Profile{
			RUC:   t.Value(row, f.RUC),
			AltID: t.Value(row, f.AltID),
			Name:  t.Value(row, f.Name),
			Size:  coerce.Size(t.Value(row, f.Size)),
		}
		if s := t.Value(row, f.Sector); s != "" {
			p.Sector = coerce.Sector(s)
		}
		if y, ok := coerce.Year(t.Value(row, f.AffiliationDate)); ok {
			p.AffiliationYear = y
		}
		if s := t.Value(row, f.Status); s != "" {
			p.Status = coerce.Status(s)
		}
		if d.Add(p) != nil {
			n++
		}
	}
	d.log.WithFields(logrus.Fields{"sheet": t.Name, "rows": len(t.Rows), "profiles": n}).Debug("profiles folded")
	return n
}

// ApplyOverrides pins manual name spellings to their RUC. Entries whose RUC
// is not a known profile are ignored. Returns the number of applied entries.
func (d *Directory) ApplyOverrides(overrides []types.Override) int {
	applied := 0
	for _, o := range overrides {
		ruc := coerce.PadRUC13(o.RUC)
		if _, ok := d.profiles[ruc]; !ok {
			d.log.WithField("ruc", ruc).Debug("override skipped, ruc not in roster")
			continue
		}
		for _, a := range o.Aliases {
			for _, n := range []string{label.Name(a), label.LegalName(a)} {
				if n != "" {
					d.aliases[n] = ruc
				}
			}
		}
		applied++
	}
	return applied
}

// Lookup returns the profile stored under key.
func (d *Directory) Lookup(key string) (*types.Profile, bool) {
	p, ok := d.profiles[key]
	return p, ok
}

// Resolve maps a company name to a profile. Order: known alias, profile keyed
// by the name itself, alternate id on row, then a placeholder registered under
// the name so later mentions converge on it. Returns nil only when name and
// alternate id are both empty.
func (d *Directory) Resolve(name string, row []string, cols table.ColumnIndex) *types.Profile {
	if p := d.match(name, row, cols); p != nil {
		return p
	}
	alt := d.altID(row, cols)
	norm := label.Name(name)
	if norm == "" && alt == "" {
		return nil
	}
	return d.placeholder(norm, "", alt)
}

// Find resolves a row that may carry a RUC. A known RUC wins, then the name
// steps of Resolve. An unknown RUC that matches nothing gets a placeholder
// keyed by the RUC.
func (d *Directory) Find(ruc, name string, row []string, cols table.ColumnIndex) *types.Profile {
	r := coerce.PadRUC13(ruc)
	if r == "" {
		return d.Resolve(name, row, cols)
	}
	if p, ok := d.profiles[r]; ok {
		return p
	}
	if p := d.match(name, row, cols); p != nil {
		return p
	}
	return d.placeholder(label.Name(name), r, "")
}

// Known is Find without the placeholder step: nil when the row matches no
// profile.
func (d *Directory) Known(ruc, name string, row []string, cols table.ColumnIndex) *types.Profile {
	if r := coerce.PadRUC13(ruc); r != "" {
		if p, ok := d.profiles[r]; ok {
			return p
		}
	}
	return d.match(name, row, cols)
}

func (d *Directory) match(name string, row []string, cols table.ColumnIndex) *types.Profile {
	norm := label.Name(name)
	for _, n := range []string{norm, label.LegalName(name)} {
		if n == "" {
			continue
		}
		if key, ok := d.aliases[n]; ok {
			if p, ok := d.profiles[key]; ok {
				return p
			}
		}
	}
	if norm != "" {
		if p, ok := d.profiles[norm]; ok {
			d.aliases[norm] = p.Key
			return p
		}
	}
	if alt := d.altID(row, cols); alt != "" {
		if key, ok := d.altIDs[alt]; ok {
			if norm != "" {
				d.aliases[norm] = key
			}
			return d.profiles[key]
		}
	}
	return nil
}

func (d *Directory) altID(row []string, cols table.ColumnIndex) string {
	if row == nil || cols == nil {
		return ""
	}
	return label.Key(table.Value(row, cols, d.fields.AltID))
}

func (d *Directory) placeholder(norm, ruc, alt string) *types.Profile {
	key := Key(ruc, "", norm)
	if key == "" {
		key = label.Key(alt)
	}
	if p, ok := d.profiles[key]; ok {
		return p
	}
	name := norm
	if name == "" {
		name = NoName
	}
	p := &types.Profile{
		Key:         key,
		RUC:         ruc,
		AltID:       label.Key(alt),
		Name:        name,
		Size:        coerce.SizeUnknown,
		Sector:      coerce.SectorUnclassified,
		Placeholder: true,
	}
	d.profiles[key] = p
	if norm != "" {
		d.aliases[norm] = key
	}
	if p.AltID != "" {
		d.altIDs[p.AltID] = key
	}
	d.placeholders++
	d.log.WithFields(logrus.Fields{"key": key, "name": norm}).Debug("placeholder profile created")
	return p
}

// Placeholders counts distinct unmatched entities seen so far.
func (d *Directory) Placeholders() int { return d.placeholders }

// Len is the number of profiles, placeholders included.
func (d *Directory) Len() int { return len(d.profiles) }

// Profiles returns copies of every profile ordered by key.
func (d *Directory) Profiles() []types.Profile {
	out := make([]types.Profile, 0, len(d.profiles))
	for _, p := range d.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
