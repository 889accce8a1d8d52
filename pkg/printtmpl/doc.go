// Package printtmpl parses, validates and renders XML print templates into
// printable HTML and CSS.
//
// A print template describes a document for one entity type (members,
// vehicles, meetings, ...). It is parsed into an immutable tree, checked for
// semantic problems, then rendered against a data context.
//
// # Quick Start
//
//	doc, err := printtmpl.Parse(xmlText)
//	if err != nil {
//	    log.Fatal(err) // printtmpl.ParseErrors with line and column
//	}
//
//	if result := printtmpl.Validate(doc); !result.Valid {
//	    log.Fatal(strings.Join(result.Errors, "\n"))
//	}
//
//	out, err := printtmpl.Render(doc, map[string]interface{}{
//	    "member": map[string]interface{}{"last_name": "Rossi", "birth_date": "2020-03-05"},
//	})
//	fmt.Println(out.HTML, out.CSS)
//
// # Template Syntax
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<template version="1.0">
//	  <metadata>
//	    <name>Scheda socio</name>
//	    <entity_type>members</entity_type>
//	  </metadata>
//	  <page format="A4" orientation="portrait">
//	    <margins top="20" bottom="20" left="15" right="15"/>
//	  </page>
//	  <styles><![CDATA[ h1 { font-size: 18pt; } ]]></styles>
//	  <body>
//	    <h1>{{member.last_name | uppercase}}</h1>
//	    <variable name="member.birth_date" format="date" default="-"/>
//	    <loop source="member.contacts">
//	      <p><variable name="type"/>: {{value}}</p>
//	    </loop>
//	    <condition test="member.active">attivo<else/>non attivo</condition>
//	  </body>
//	</template>
//
// Paths use dots for fields and brackets for indexes: "members[0].name".
// Inside a loop the item's fields are in scope together with loop_item,
// loop_index, loop_first and loop_last.
//
// Condition tests are a path (truthy), !path, path == 'value' or
// path != 'value'.
//
// # Formatters
//
//	date        05/03/2020
//	datetime    05/03/2020 14:30
//	currency    1.234,50 €
//	number      1.235
//	uppercase   ROSSI
//	lowercase   rossi
//	capitalize  Mario Rossi
//	none        default stringification
//
// Custom formatters are added with RegisterGlobalFormatter or
// Engine.RegisterFormatter. Locale, currency symbol and timezone come from
// Config.
//
// # Preview
//
// Engine.Preview validates an incoming request, the template, asks a
// SampleDataProvider for representative data and renders it. Failures are
// returned as a *RequestError inside the response.
//
// # Configuration
//
// Config values come from defaults, an optional YAML file and PRINTTMPL_*
// environment variables, in that order of precedence from lowest to highest.
package printtmpl
