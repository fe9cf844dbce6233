package vulkan

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// WGSL resources are read straight from the source text. Only group 0 is
// supported; every binding becomes one entry of the program's single
// descriptor set.

type bindingKind int

const (
	bindingUniform bindingKind = iota
	bindingTexture
	bindingSampler
)

func (k bindingKind) String() string {
	switch k {
	case bindingTexture:
		return "texture"
	case bindingSampler:
		return "sampler"
	}
	return "uniform"
}

type stageMask uint8

const (
	stageVertex stageMask = 1 << iota
	stageFragment
)

// uniformMember is one numeric leaf of a uniform binding. Scalar bindings
// have a single member with an empty name.
type uniformMember struct {
	name   string
	offset uint32
	size   uint32
	typ    metadata.ShaderUniformType
}

type shaderBinding struct {
	binding     uint32
	name        string
	kind        bindingKind
	stages      stageMask
	textureType metadata.TextureType
	// size is the std140-like size of a uniform block.
	size    uint32
	members []uniformMember
	// sampler is the binding of the sampler paired with a texture, or -1.
	sampler int
}

var (
	structPattern  = regexp.MustCompile(`(?s)struct\s+(\w+)\s*\{(.*?)\}`)
	varPattern     = regexp.MustCompile(`((?:@\w+\s*\([^)]*\)\s*)+)var(?:\s*<\s*([\w\s,]+?)\s*>)?\s+(\w+)\s*:\s*([^;=]+?)\s*;`)
	groupPattern   = regexp.MustCompile(`@group\s*\(\s*(\d+)\s*\)`)
	bindPattern    = regexp.MustCompile(`@binding\s*\(\s*(\d+)\s*\)`)
	attrPattern    = regexp.MustCompile(`@\w+\s*(\([^)]*\))?`)
	commentPattern = regexp.MustCompile(`(?s)//[^\n]*|/\*.*?\*/`)
)

type typeLayout struct {
	size, align uint32
	typ         metadata.ShaderUniformType
	members     []uniformMember
	scalar      bool
}

var scalarLayouts = map[string]typeLayout{
	"f32":         {size: 4, align: 4, typ: metadata.ShaderUniformTypeFloat32, scalar: true},
	"vec2<f32>":   {size: 8, align: 8, typ: metadata.ShaderUniformTypeFloat32_2, scalar: true},
	"vec2f":       {size: 8, align: 8, typ: metadata.ShaderUniformTypeFloat32_2, scalar: true},
	"vec3<f32>":   {size: 12, align: 16, typ: metadata.ShaderUniformTypeFloat32_3, scalar: true},
	"vec3f":       {size: 12, align: 16, typ: metadata.ShaderUniformTypeFloat32_3, scalar: true},
	"vec4<f32>":   {size: 16, align: 16, typ: metadata.ShaderUniformTypeFloat32_4, scalar: true},
	"vec4f":       {size: 16, align: 16, typ: metadata.ShaderUniformTypeFloat32_4, scalar: true},
	"mat4x4<f32>": {size: 64, align: 16, typ: metadata.ShaderUniformTypeMatrix4, scalar: true},
	"mat4x4f":     {size: 64, align: 16, typ: metadata.ShaderUniformTypeMatrix4, scalar: true},
}

func normalizeType(t string) string {
	return strings.Join(strings.Fields(t), "")
}

type structField struct {
	name, typ string
}

func parseStructs(source string) map[string][]structField {
	structs := map[string][]structField{}
	for _, m := range structPattern.FindAllStringSubmatch(source, -1) {
		var fields []structField
		for _, part := range strings.Split(m[2], ",") {
			part = strings.TrimSpace(attrPattern.ReplaceAllString(part, ""))
			name, typ, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			fields = append(fields, structField{name: strings.TrimSpace(name), typ: normalizeType(typ)})
		}
		structs[m[1]] = fields
	}
	return structs
}

// layoutOf computes the uniform address space layout of typ.
func layoutOf(typ string, structs map[string][]structField, depth int) (typeLayout, error) {
	if l, ok := scalarLayouts[typ]; ok {
		l.members = []uniformMember{{size: l.size, typ: l.typ}}
		return l, nil
	}
	fields, ok := structs[typ]
	if !ok || depth > 8 {
		return typeLayout{}, fmt.Errorf("unsupported uniform type %q", typ)
	}
	var layout typeLayout
	offset := uint32(0)
	for _, f := range fields {
		fl, err := layoutOf(f.typ, structs, depth+1)
		if err != nil {
			return typeLayout{}, fmt.Errorf("%s.%s: %w", typ, f.name, err)
		}
		offset = alignUp(offset, fl.align)
		for _, m := range fl.members {
			name := f.name
			if m.name != "" {
				name += "." + m.name
			}
			layout.members = append(layout.members, uniformMember{
				name:   name,
				offset: offset + m.offset,
				size:   m.size,
				typ:    m.typ,
			})
		}
		offset += fl.size
		layout.align = max(layout.align, fl.align)
	}
	layout.align = alignUp(max(layout.align, 1), 16)
	layout.size = alignUp(offset, layout.align)
	return layout, nil
}

func textureTypeOf(typ string) (metadata.TextureType, bool) {
	switch {
	case strings.HasPrefix(typ, "texture_2d<"), typ == "texture_depth_2d":
		return metadata.TextureType2d, true
	case strings.HasPrefix(typ, "texture_cube<"), typ == "texture_depth_cube":
		return metadata.TextureTypeCube, true
	}
	return 0, false
}

// reflectWGSL lists the group 0 resources one stage declares, ordered by
// binding.
func reflectWGSL(source string, stage stageMask) ([]*shaderBinding, error) {
	source = commentPattern.ReplaceAllString(source, "")
	structs := parseStructs(source)
	var bindings []*shaderBinding
	for _, m := range varPattern.FindAllStringSubmatch(source, -1) {
		attrs, space, name, typ := m[1], m[2], m[3], normalizeType(m[4])
		bm := bindPattern.FindStringSubmatch(attrs)
		if bm == nil {
			continue
		}
		group := 0
		if gm := groupPattern.FindStringSubmatch(attrs); gm != nil {
			group, _ = strconv.Atoi(gm[1])
		}
		if group != 0 {
			return nil, fmt.Errorf("%s uses group %d, only group 0 is supported", name, group)
		}
		index, _ := strconv.Atoi(bm[1])
		b := &shaderBinding{binding: uint32(index), name: name, stages: stage, sampler: -1}
		switch {
		case strings.HasPrefix(strings.TrimSpace(space), "uniform"):
			layout, err := layoutOf(typ, structs, 0)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			b.kind = bindingUniform
			b.size = alignUp(layout.size, 16)
			b.members = layout.members
		case typ == "sampler", typ == "sampler_comparison":
			b.kind = bindingSampler
		default:
			tt, ok := textureTypeOf(typ)
			if !ok {
				return nil, fmt.Errorf("%s: unsupported resource type %q", name, typ)
			}
			b.kind = bindingTexture
			b.textureType = tt
		}
		bindings = append(bindings, b)
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].binding < bindings[j].binding })
	return bindings, nil
}

// mergeBindings combines the resources of both stages. A binding number
// must name the same resource in each.
func mergeBindings(stages ...[]*shaderBinding) ([]*shaderBinding, error) {
	byIndex := map[uint32]*shaderBinding{}
	for _, list := range stages {
		for _, b := range list {
			existing, ok := byIndex[b.binding]
			if !ok {
				copied := *b
				byIndex[b.binding] = &copied
				continue
			}
			if existing.name != b.name || existing.kind != b.kind || existing.size != b.size {
				return nil, fmt.Errorf("binding %d is %s %s in one stage and %s %s in another",
					b.binding, existing.kind, existing.name, b.kind, b.name)
			}
			existing.stages |= b.stages
		}
	}
	merged := make([]*shaderBinding, 0, len(byIndex))
	for _, b := range byIndex {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].binding < merged[j].binding })
	pairSamplers(merged)
	return merged, nil
}

// pairSamplers matches each texture with the sampler named after it plus
// "Sampler". A lone texture and a lone sampler pair regardless of names.
func pairSamplers(bindings []*shaderBinding) {
	samplers := map[string]*shaderBinding{}
	var textures, allSamplers []*shaderBinding
	for _, b := range bindings {
		switch b.kind {
		case bindingSampler:
			samplers[b.name] = b
			allSamplers = append(allSamplers, b)
		case bindingTexture:
			textures = append(textures, b)
		}
	}
	for _, t := range textures {
		if s, ok := samplers[t.name+"Sampler"]; ok {
			t.sampler = int(s.binding)
		}
	}
	if len(textures) == 1 && len(allSamplers) == 1 && textures[0].sampler < 0 {
		textures[0].sampler = int(allSamplers[0].binding)
	}
}

// uniformTarget is where a named uniform lands.
type uniformTarget struct {
	binding *shaderBinding
	member  uniformMember
}

// resolveUniform accepts "var", "var.member" or a member name that only one
// uniform block declares.
func resolveUniform(bindings []*shaderBinding, name string) (uniformTarget, bool) {
	var found []uniformTarget
	for _, b := range bindings {
		if b.kind != bindingUniform {
			continue
		}
		for _, m := range b.members {
			full := b.name
			if m.name != "" {
				full += "." + m.name
			}
			if full == name {
				return uniformTarget{binding: b, member: m}, true
			}
			if m.name == name {
				found = append(found, uniformTarget{binding: b, member: m})
			}
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return uniformTarget{}, false
}

func findTexture(bindings []*shaderBinding, name string) (*shaderBinding, bool) {
	for _, b := range bindings {
		if b.kind == bindingTexture && b.name == name {
			return b, true
		}
	}
	return nil, false
}
