// Package pluginxml reads .plugin descriptor files.
//
// A descriptor names the plugin binary for each platform and build type and
// lists the classes the binary provides, so a registry can offer those
// classes before the binary is loaded:
//
//	<Plugin Version="1">
//	  <Active>1</Active>
//	  <Delayed>1</Delayed>
//	  <Name>PLSound</Name>
//	  <Platform Name="Linux" BitArchitecture="64">
//	    <Library Type="Release">libPLSound.so</Library>
//	    <Library Type="Debug">libPLSoundD.so</Library>
//	  </Platform>
//	  <Classes>
//	    <Class Name="SoundManager" Namespace="PLSound" BaseClassName="PLCore::Object"
//	           HasConstructor="1" HasDefaultConstructor="1">
//	      <Properties><Property Name="Formats">wav,ogg</Property></Properties>
//	    </Class>
//	  </Classes>
//	</Plugin>
package pluginxml
