package sampledata

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

type generator struct {
	fake *gofakeit.Faker
	now  time.Time
	seq  int
}

func (g *generator) next() int {
	g.seq++
	return g.seq
}

func (g *generator) date(from, to time.Time) string {
	return g.fake.DateRange(from, to).Format(dateLayout)
}

func (g *generator) yearsAgo(min, max int) string {
	return g.date(g.now.AddDate(-max, 0, 0), g.now.AddDate(-min, 0, 0))
}

func (g *generator) daysAhead(min, max int) string {
	return g.date(g.now.AddDate(0, 0, min), g.now.AddDate(0, 0, max))
}

func (g *generator) pick(options ...string) string {
	return g.fake.RandomString(options)
}

func (g *generator) association() map[string]interface{} {
	return map[string]interface{}{
		"name":       "Associazione " + g.fake.LastName(),
		"address":    g.fake.Street(),
		"city":       g.fake.City(),
		"zip":        g.fake.Zip(),
		"phone":      g.fake.Phone(),
		"email":      g.fake.Email(),
		"tax_code":   g.fake.Numerify("###########"),
		"logo":       "",
		"president":  g.fake.FirstName() + " " + g.fake.LastName(),
		"founded_on": g.yearsAgo(10, 40),
	}
}

func (g *generator) address() map[string]interface{} {
	return map[string]interface{}{
		"type":   g.pick("residenza", "domicilio"),
		"street": g.fake.Street(),
		"city":   g.fake.City(),
		"zip":    g.fake.Zip(),
		"region": g.fake.StateAbr(),
	}
}

func (g *generator) contacts() []interface{} {
	return []interface{}{
		map[string]interface{}{"type": "email", "value": g.fake.Email()},
		map[string]interface{}{"type": "cellulare", "value": g.fake.Phone()},
		map[string]interface{}{"type": "telefono", "value": g.fake.Numerify("035 ######")},
	}
}

func (g *generator) licenses() []interface{} {
	n := g.fake.IntRange(1, 2)
	out := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]interface{}{
			"type":       g.pick("B", "C", "CE", "nautica"),
			"number":     g.fake.Numerify("U1####ZZ"),
			"issued_on":  g.yearsAgo(2, 20),
			"expires_on": g.daysAhead(30, 3650),
			"issued_by":  "MCTC " + g.fake.City(),
		})
	}
	return out
}

func (g *generator) courses() []interface{} {
	n := g.fake.IntRange(1, 3)
	out := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]interface{}{
			"name":         g.pick("Corso base", "Primo soccorso", "Antincendio boschivo", "Radio comunicazioni", "Rischio idrogeologico"),
			"completed_on": g.yearsAgo(0, 8),
			"hours":        g.fake.IntRange(4, 40),
			"passed":       g.fake.Bool(),
		})
	}
	return out
}

func (g *generator) person() map[string]interface{} {
	return map[string]interface{}{
		"first_name": g.fake.FirstName(),
		"last_name":  g.fake.LastName(),
		"tax_code":   g.fake.Regex("[A-Z]{6}[0-9]{2}[A-Z][0-9]{2}[A-Z][0-9]{3}[A-Z]"),
		"birth_city": g.fake.City(),
		"gender":     g.fake.Gender(),
	}
}

func (g *generator) member() map[string]interface{} {
	rec := g.person()
	id := g.next()
	rec["id"] = id
	rec["registration_number"] = fmt.Sprintf("%04d", id)
	rec["birth_date"] = g.yearsAgo(19, 70)
	rec["member_type"] = g.pick("ordinario", "fondatore", "sostenitore")
	rec["status"] = g.pick("attivo", "sospeso", "dimesso")
	rec["active"] = rec["status"] == "attivo"
	rec["registration_date"] = g.yearsAgo(0, 15)
	rec["fee"] = g.fake.Price(20, 80)
	rec["occupation"] = g.fake.JobTitle()
	rec["email"] = g.fake.Email()
	rec["contacts"] = g.contacts()
	rec["addresses"] = []interface{}{g.address()}
	rec["licenses"] = g.licenses()
	rec["courses"] = g.courses()
	return rec
}

func (g *generator) juniorMember() map[string]interface{} {
	rec := g.person()
	id := g.next()
	rec["id"] = id
	rec["registration_number"] = fmt.Sprintf("C%03d", id)
	rec["birth_date"] = g.yearsAgo(8, 17)
	rec["registration_date"] = g.yearsAgo(0, 5)
	rec["school"] = "Istituto " + g.fake.LastName()
	rec["status"] = g.pick("attivo", "sospeso")

	guardians := make([]interface{}, 0, 2)
	for _, relation := range []string{"madre", "padre"} {
		guardian := g.person()
		guardian["relationship"] = relation
		guardian["contacts"] = g.contacts()
		guardians = append(guardians, guardian)
	}
	rec["guardians"] = guardians
	rec["addresses"] = []interface{}{g.address()}
	return rec
}

func (g *generator) vehicle() map[string]interface{} {
	id := g.next()
	maintenance := make([]interface{}, 0, 3)
	for i := 0; i < 3; i++ {
		maintenance = append(maintenance, map[string]interface{}{
			"date":        g.yearsAgo(0, 3),
			"type":        g.pick("tagliando", "revisione", "cambio gomme", "riparazione"),
			"description": g.fake.Adjective() + " " + g.fake.Noun(),
			"cost":        g.fake.Price(50, 1500),
			"mileage":     g.fake.IntRange(10000, 180000),
		})
	}
	return map[string]interface{}{
		"id":                id,
		"license_plate":     g.fake.Regex("[A-Z]{2}[0-9]{3}[A-Z]{2}"),
		"type":              g.pick("autovettura", "fuoristrada", "furgone", "autocarro", "carrello"),
		"brand":             g.fake.CarMaker(),
		"model":             g.fake.CarModel(),
		"year":              g.fake.IntRange(g.now.Year()-20, g.now.Year()),
		"status":            g.pick("operativo", "in manutenzione", "fuori servizio"),
		"mileage":           g.fake.IntRange(10000, 200000),
		"insurance_expiry":  g.daysAhead(-30, 365),
		"inspection_expiry": g.daysAhead(-30, 730),
		"maintenance":       maintenance,
	}
}

func (g *generator) participants(n int) []interface{} {
	out := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		p := g.person()
		p["role"] = g.pick("socio", "consigliere", "segretario", "presidente")
		p["present"] = g.fake.Bool()
		out = append(out, p)
	}
	return out
}

func (g *generator) meeting() map[string]interface{} {
	id := g.next()
	agenda := make([]interface{}, 0, 4)
	for i := 1; i <= 4; i++ {
		agenda = append(agenda, map[string]interface{}{
			"number":  i,
			"title":   g.fake.Adjective() + " " + g.fake.Noun(),
			"outcome": g.pick("approvato", "respinto", "rinviato"),
		})
	}
	return map[string]interface{}{
		"id":           id,
		"type":         g.pick("assemblea ordinaria", "assemblea straordinaria", "consiglio direttivo"),
		"date":         g.daysAhead(-180, 60),
		"start_time":   g.pick("18:00", "20:30", "21:00"),
		"location":     "Sede di " + g.fake.City(),
		"convened_by":  g.fake.FirstName() + " " + g.fake.LastName(),
		"participants": g.participants(g.fake.IntRange(3, 6)),
		"agenda":       agenda,
	}
}

func (g *generator) event() map[string]interface{} {
	id := g.next()
	start := g.daysAhead(-90, 90)
	return map[string]interface{}{
		"id":           id,
		"title":        g.pick("Esercitazione", "Intervento", "Manifestazione", "Presidio"),
		"type":         g.pick("emergenza", "addestramento", "servizio"),
		"start_date":   start,
		"end_date":     start,
		"location":     g.fake.City(),
		"description":  g.fake.Adjective() + " " + g.fake.Noun(),
		"volunteers":   g.fake.IntRange(2, 30),
		"participants": g.participants(g.fake.IntRange(2, 5)),
	}
}

func (g *generator) application() map[string]interface{} {
	rec := g.person()
	id := g.next()
	rec["id"] = id
	rec["application_code"] = fmt.Sprintf("DOM-%d-%04d", g.now.Year(), id)
	rec["birth_date"] = g.yearsAgo(16, 65)
	rec["submitted_on"] = g.daysAhead(-60, 0)
	rec["status"] = g.pick("in attesa", "approvata", "respinta")
	rec["email"] = g.fake.Email()
	rec["phone"] = g.fake.Phone()
	rec["contacts"] = g.contacts()
	rec["addresses"] = []interface{}{g.address()}
	rec["privacy_consent"] = true
	rec["photo_consent"] = g.fake.Bool()
	return rec
}
