package bsvprint

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protobsv/protobsv/bsvname"
)

// imports returns the import statements for every file imported by the file
// being generated, and the wildcard re-exports for its public imports.
//
// Each direct import is bound to its alias. It is followed by the aliases of
// the files that import re-exports publicly, which are copied out of the
// imported module so that names qualified with them resolve here too.
func (c *genContext) imports() ([]importDecl, []reexportDecl) {
	decls := []importDecl{}
	imps := c.file.Imports()
	for i, length := 0, imps.Len(); i < length; i++ {
		dep := imps.Get(i).FileDescriptor
		alias := bsvname.ModuleAlias(dep.Path())
		decls = append(decls, importDecl{
			Statement: bsvname.ModuleImportStatement(dep.Path()),
			Alias:     alias,
		})
		decls = appendPublicAliases(decls, alias, dep)
	}

	reexports := []reexportDecl{}
	for i, length := 0, imps.Len(); i < length; i++ {
		imp := imps.Get(i)
		if !imp.IsPublic {
			continue
		}
		reexports = append(reexports, reexportDecl{
			Module:    bsvname.ModuleName(imp.Path()),
			Statement: bsvname.WildcardImportStatement(imp.Path()),
		})
	}
	return decls, reexports
}

// appendPublicAliases binds the alias of every file that fd imports publicly,
// following chains of public imports, to the same alias exported by the
// module imported as copyFrom.
func appendPublicAliases(decls []importDecl, copyFrom string, fd protoreflect.FileDescriptor) []importDecl {
	imps := fd.Imports()
	for i, length := 0, imps.Len(); i < length; i++ {
		imp := imps.Get(i)
		if !imp.IsPublic {
			continue
		}
		decls = append(decls, importDecl{
			Alias: bsvname.ModuleAlias(imp.Path()),
			From:  copyFrom,
		})
		decls = appendPublicAliases(decls, copyFrom, imp.FileDescriptor)
	}
	return decls
}
