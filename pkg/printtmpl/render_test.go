package printtmpl

import (
	"strings"
	"sync"
	"testing"
)

func renderBody(t *testing.T, body string, data interface{}) string {
	t.Helper()
	engine := NewWithConfig(DefaultConfig())
	doc, err := engine.Parse(wrapBody(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result := engine.Validate(doc); !result.Valid {
		t.Fatalf("template is not valid: %v", result.Errors)
	}
	out, err := engine.Render(doc, data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out.HTML
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		body string
		data interface{}
		want string
	}{
		{
			name: "date variable",
			body: `<variable name="member.birth_date" format="date"/>`,
			data: map[string]interface{}{"member": map[string]interface{}{"birth_date": "2020-03-05"}},
			want: "05/03/2020",
		},
		{
			name: "loop concatenates items",
			body: `<loop source="contacts"><variable name="value"/></loop>`,
			data: map[string]interface{}{"contacts": []interface{}{
				map[string]interface{}{"value": "a"},
				map[string]interface{}{"value": "b"},
			}},
			want: "ab",
		},
		{
			name: "loop over empty array",
			body: `<loop source="contacts"><p>x</p></loop>`,
			data: map[string]interface{}{"contacts": []interface{}{}},
			want: "",
		},
		{
			name: "loop over missing source",
			body: `<loop source="contacts"><p>x</p></loop>`,
			data: map[string]interface{}{},
			want: "",
		},
		{
			name: "loop over non sequence",
			body: `<loop source="contacts"><p>x</p></loop>`,
			data: map[string]interface{}{"contacts": "abc"},
			want: "",
		},
		{
			name: "loop scope falls back to parent",
			body: `<loop source="items"><variable name="name"/>-<variable name="owner"/>;</loop>`,
			data: map[string]interface{}{
				"owner": "club",
				"items": []interface{}{
					map[string]interface{}{"name": "a"},
					map[string]interface{}{"name": "b", "owner": "me"},
				},
			},
			want: "a-club;b-me;",
		},
		{
			name: "loop variables",
			body: `<loop source="tags"><condition test="!loop_first">, </condition><variable name="loop_index"/>:<variable name="loop_item" format="uppercase"/><condition test="loop_last">.</condition></loop>`,
			data: map[string]interface{}{"tags": []string{"x", "y", "z"}},
			want: "0:X, 1:Y, 2:Z.",
		},
		{
			name: "nested loops",
			body: `<loop source="groups"><variable name="title"/>[<loop source="members"><variable name="name"/><variable name="title"/></loop>]</loop>`,
			data: map[string]interface{}{"groups": []interface{}{
				map[string]interface{}{"title": "G", "members": []interface{}{
					map[string]interface{}{"name": "a"},
					map[string]interface{}{"name": "b", "title": "T"},
				}},
			}},
			want: "G[aGbT]",
		},
		{
			name: "condition true",
			body: `<condition test="member.active">yes<else/>no</condition>`,
			data: map[string]interface{}{"member": map[string]interface{}{"active": true}},
			want: "yes",
		},
		{
			name: "condition false with else",
			body: `<condition test="member.active">yes<else/>no</condition>`,
			data: map[string]interface{}{"member": map[string]interface{}{"active": 0}},
			want: "no",
		},
		{
			name: "condition false without else",
			body: `<condition test="member.notes">yes</condition>`,
			data: map[string]interface{}{"member": map[string]interface{}{"notes": ""}},
			want: "",
		},
		{
			name: "condition empty sequence",
			body: `<condition test="items">some<else/>none</condition>`,
			data: map[string]interface{}{"items": []interface{}{}},
			want: "none",
		},
		{
			name: "condition empty object is truthy",
			body: `<condition test="extra">yes<else/>no</condition>`,
			data: map[string]interface{}{"extra": map[string]interface{}{}},
			want: "yes",
		},
		{
			name: "condition negation",
			body: `<condition test="!member.email">missing</condition>`,
			data: map[string]interface{}{"member": map[string]interface{}{}},
			want: "missing",
		},
		{
			name: "condition equality",
			body: `<condition test="status == 'active'">A<else/>B</condition>`,
			data: map[string]interface{}{"status": "active"},
			want: "A",
		},
		{
			name: "condition inequality with number",
			body: `<condition test="count != 3">A<else/>B</condition>`,
			data: map[string]interface{}{"count": 3},
			want: "B",
		},
		{
			name: "missing variable renders empty",
			body: `[<variable name="member.phone"/>]`,
			data: map[string]interface{}{"member": map[string]interface{}{}},
			want: "[]",
		},
		{
			name: "nil variable renders empty",
			body: `[<variable name="v" format="date"/>]`,
			data: map[string]interface{}{"v": nil},
			want: "[]",
		},
		{
			name: "default value",
			body: `<variable name="member.phone" default="n/d" format="uppercase"/>`,
			data: map[string]interface{}{},
			want: "N/D",
		},
		{
			name: "array index",
			body: `<variable name="contacts[1].value"/>`,
			data: map[string]interface{}{"contacts": []interface{}{
				map[string]interface{}{"value": "a"},
				map[string]interface{}{"value": "b"},
			}},
			want: "b",
		},
		{
			name: "currency",
			body: `<variable name="fee" format="currency"/>`,
			data: map[string]interface{}{"fee": 1234.5},
			want: "1.234,50 €",
		},
		{
			name: "text is escaped",
			body: `&lt;script&gt;alert(1)&lt;/script&gt;`,
			data: nil,
			want: "&lt;script&gt;alert(1)&lt;/script&gt;",
		},
		{
			name: "variable is escaped",
			body: `<variable name="note"/>`,
			data: map[string]interface{}{"note": `<b onclick="x">"hi" & bye</b>`},
			want: "&lt;b onclick=&#34;x&#34;&gt;&#34;hi&#34; &amp; bye&lt;/b&gt;",
		},
		{
			name: "layout tags",
			body: `<section class="box"><text style="color:red">hi</text><image src="/img/{{member.id}}.png" alt="foto"/></section>`,
			data: map[string]interface{}{"member": map[string]interface{}{"id": 7}},
			want: `<div class="box"><span style="color:red">hi</span><img src="/img/7.png" alt="foto" /></div>`,
		},
		{
			name: "pass through elements",
			body: `<table class="t"><tr><td>1</td></tr></table><br/>`,
			want: `<table class="t"><tr><td>1</td></tr></table><br />`,
		},
		{
			name: "inline placeholders",
			body: `<p>Gentile {{ member.name | capitalize }}, nato il {{member.birth_date|date}}{{member.missing}}</p>`,
			data: map[string]interface{}{"member": map[string]interface{}{"name": "mario", "birth_date": "1980-12-01"}},
			want: "<p>Gentile Mario, nato il 01/12/1980</p>",
		},
		{
			name: "active elements render only their children",
			body: `<script>alert(1)</script><iframe src="https://example.com"><b>x</b></iframe><img src="x" onerror="alert(2)"/>`,
			want: `alert(1)<b>x</b><img src="x" />`,
		},
		{
			name: "script urls are dropped",
			body: `<p><a href="javascript:alert(1)" onclick="x()">link</a></p>`,
			want: `<p><a>link</a></p>`,
		},
		{
			name: "interpolated script url is dropped",
			body: `<p><a href="{{url}}">link</a></p>`,
			data: map[string]interface{}{"url": "javascript:alert(1)"},
			want: `<p><a>link</a></p>`,
		},
		{
			name: "attribute interpolation is escaped",
			body: `<p title="{{v}}">x</p>`,
			data: map[string]interface{}{"v": `"><script>`},
			want: `<p title="&#34;&gt;&lt;script&gt;">x</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderBody(t, tt.body, tt.data); got != tt.want {
				t.Errorf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderNeverEmitsScriptFromText(t *testing.T) {
	src := wrapBody(`<p><![CDATA[<script>alert(1)</script>]]></p>`)
	result, err := NewWithConfig(DefaultConfig()).RenderXML(src, nil)
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}
	if strings.Contains(result.HTML, "<script>") {
		t.Errorf("unescaped script in %q", result.HTML)
	}
}

func TestRenderLoopRepeatsChildren(t *testing.T) {
	items := make([]interface{}, 5)
	for i := range items {
		items[i] = map[string]interface{}{"n": i}
	}
	got := renderBody(t, `<loop source="items"><li><variable name="n"/></li></loop>`,
		map[string]interface{}{"items": items})

	want := "<li>0</li><li>1</li><li>2</li><li>3</li><li>4</li>"
	if got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestRenderResult(t *testing.T) {
	src := header + `<template>
  <metadata><name>Verbale</name></metadata>
  <page format="Letter" orientation="landscape"><margins top="10"/></page>
  <styles>h1 { color: navy; }</styles>
  <body><h1><variable name="title"/></h1></body>
</template>`

	engine := NewWithConfig(DefaultConfig())
	result, err := engine.RenderXML(src, map[string]interface{}{"title": "Riunione"})
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}

	if result.HTML != "<h1>Riunione</h1>" {
		t.Errorf("HTML = %q", result.HTML)
	}
	if result.CSS != "h1 { color: navy; }" {
		t.Errorf("CSS = %q", result.CSS)
	}
	if result.Format != PageLetter || result.Orientation != Landscape {
		t.Errorf("page = %s %s", result.Format, result.Orientation)
	}
	if result.Margins.Top != 10 || result.Margins.Left != 15 {
		t.Errorf("margins = %+v", result.Margins)
	}

	page := result.Document()
	for _, want := range []string{
		"<title>Verbale</title>",
		"@page { size: Letter landscape; margin: 10mm 15mm 20mm 15mm; }",
		"h1 { color: navy; }",
		"<h1>Riunione</h1>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page does not contain %q:\n%s", want, page)
		}
	}
}

func TestRenderXMLRejectsInvalidTemplate(t *testing.T) {
	_, err := NewWithConfig(DefaultConfig()).RenderXML(wrapBody(`<variable name="a" format="nope"/>`), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsSemanticError(err) {
		t.Errorf("expected semantic error, got %T: %v", err, err)
	}
}

func TestRenderNilDocument(t *testing.T) {
	if _, err := NewWithConfig(DefaultConfig()).Render(nil, nil); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestRenderWithStructs(t *testing.T) {
	type contact struct {
		Kind  string `json:"kind"`
		Value string
	}
	type member struct {
		FirstName string `json:"first_name"`
		Contacts  []contact
		Fee       *float64
	}
	fee := 50.0

	got := renderBody(t,
		`<variable name="member.first_name"/>|<loop source="member.contacts"><variable name="kind"/>=<variable name="value"/>;</loop>|<variable name="member.fee" format="currency"/>`,
		map[string]interface{}{"member": &member{
			FirstName: "Anna",
			Contacts:  []contact{{Kind: "email", Value: "a@b.it"}},
			Fee:       &fee,
		}})

	if want := "Anna|email=a@b.it;|50,00 €"; got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestRenderIsIndependentAcrossCalls(t *testing.T) {
	engine := NewWithConfig(DefaultConfig())
	doc, err := engine.Parse(wrapBody(`<loop source="items"><variable name="v"/></loop>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items := []interface{}{map[string]interface{}{"v": i}, map[string]interface{}{"v": i}}
			result, err := engine.Render(doc, map[string]interface{}{"items": items})
			if err != nil {
				t.Errorf("Render: %v", err)
				return
			}
			want := FormatValue(i) + FormatValue(i)
			if result.HTML != want {
				t.Errorf("render = %q, want %q", result.HTML, want)
			}
		}(i)
	}
	wg.Wait()
}

func TestRenderPostProcessing(t *testing.T) {
	config := DefaultConfig()
	config.SanitizeHTML = true
	config.MinifyHTML = true
	engine := NewWithConfig(config)

	result, err := engine.RenderXML(wrapBody(`<div onclick="steal()">  <p>  ciao  </p>  </div><script>x</script>`), nil)
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}
	if strings.Contains(result.HTML, "onclick") || strings.Contains(result.HTML, "<script") {
		t.Errorf("sanitizer left unsafe markup: %q", result.HTML)
	}
	if strings.Contains(result.HTML, "  ") {
		t.Errorf("minifier left runs of spaces: %q", result.HTML)
	}
}
