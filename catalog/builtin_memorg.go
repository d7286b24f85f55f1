package catalog

// Predefined memory organisations, grounded on the snand_memorg_* constants
// declared in part.h. Planes default to 1 and dies (chips) to 1 unless the
// name says otherwise ("_2p" = 2 planes, "_2d" = 2 dies).
var (
	Memorg512M2k64   = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 512, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg512M2k128  = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 512, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg1G2k64     = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 1024, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg2G2k64     = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg2G2k120    = MemoryOrg{PageSize: 2048, OobSize: 120, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg4G2k64     = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 4096, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg1G2k120    = MemoryOrg{PageSize: 2048, OobSize: 120, PagesPerBlock: 64, BlocksPerLun: 1024, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg1G2k128    = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 1024, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg2G2k128    = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg4G2k128    = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 4096, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg4G4k240    = MemoryOrg{PageSize: 4096, OobSize: 240, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg4G4k256    = MemoryOrg{PageSize: 4096, OobSize: 256, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg8G2k128    = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 8192, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg8G4k256    = MemoryOrg{PageSize: 4096, OobSize: 256, PagesPerBlock: 64, BlocksPerLun: 4096, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 1}
	Memorg1G2k64_2p  = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 1024, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 2}
	Memorg2G2k64_2p  = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 2}
	Memorg2G2k64_2d  = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 1024, LunsPerCS: 2, NumChips: 1, PlanesPerLun: 1}
	Memorg2G2k128_2p = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 2}
	Memorg4G2k64_2p  = MemoryOrg{PageSize: 2048, OobSize: 64, PagesPerBlock: 64, BlocksPerLun: 4096, LunsPerCS: 1, NumChips: 1, PlanesPerLun: 2}
	Memorg4G2k128_2p2d = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 2, NumChips: 1, PlanesPerLun: 2}
	Memorg8G4k256_2d = MemoryOrg{PageSize: 4096, OobSize: 256, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 2, NumChips: 1, PlanesPerLun: 1}
	Memorg8G2k128_2p4d = MemoryOrg{PageSize: 2048, OobSize: 128, PagesPerBlock: 64, BlocksPerLun: 2048, LunsPerCS: 4, NumChips: 1, PlanesPerLun: 2}
)

// ecc2k64_1bitLayout is the canonical page layout for 2048+64 parts using
// 1-bit/step ECC: spec.md scenario S1 names it page_layout = ecc_2k_64_1bit_layout.
var ecc2k64_1bitLayout = PageLayout{Entries: []LayoutEntry{
	{RegionData, 2048},
	{RegionMarker, 2},
	{RegionOobFree, 6},
	{RegionEccParity, 32},
	{RegionOobFree, 24},
}}
